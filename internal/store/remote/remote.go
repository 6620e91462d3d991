// Package remote implements the GitHub storage strategy for nxt-gallery.
// A publish becomes exactly one commit on the site repository's branch,
// created through the git-data API: both the image blob and the record
// document land in a single tree, so a consumer can never observe one
// file without the other. Pushing the commit triggers the downstream site
// rebuild.
package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/google/go-github/v66/github"

	"github.com/banux/nxt-gallery/internal/gallery"
)

// fileMode is the git mode for a regular non-executable file.
const fileMode = "100644"

// Store publishes gallery entries to a GitHub repository.
type Store struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

// New creates a Store that commits to owner/repo on branch using client.
func New(client *github.Client, owner, repo, branch string) *Store {
	return &Store{client: client, owner: owner, repo: repo, branch: branch}
}

// Publish writes rec and image as one commit on top of the current branch
// head. Nothing is visible until the final reference update, and that
// update is fast-forward only: if another publish moved the branch head in
// the meantime, GitHub rejects the update and the error is surfaced to
// the caller rather than retried. The orphaned blobs and tree from a
// failed attempt are unreachable objects that GitHub garbage-collects.
//
// It implements gallery.Publisher.
func (s *Store) Publish(ctx context.Context, rec gallery.Record, image []byte) (string, error) {
	ref, _, err := s.client.Git.GetRef(ctx, s.owner, s.repo, "heads/"+s.branch)
	if err != nil {
		return "", fmt.Errorf("read branch head: %w", err)
	}
	headSHA := ref.GetObject().GetSHA()

	head, _, err := s.client.Git.GetCommit(ctx, s.owner, s.repo, headSHA)
	if err != nil {
		return "", fmt.Errorf("read head commit: %w", err)
	}
	baseTreeSHA := head.GetTree().GetSHA()

	imageBlob, err := s.createBlob(ctx, image)
	if err != nil {
		return "", fmt.Errorf("create image blob: %w", err)
	}

	doc, err := gallery.EncodeRecord(rec)
	if err != nil {
		return "", err
	}
	recordBlob, err := s.createBlob(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create record blob: %w", err)
	}

	tree, _, err := s.client.Git.CreateTree(ctx, s.owner, s.repo, baseTreeSHA, []*github.TreeEntry{
		{
			Path: github.String(gallery.ImageDir + "/" + rec.ImageFilename()),
			Mode: github.String(fileMode),
			Type: github.String("blob"),
			SHA:  imageBlob.SHA,
		},
		{
			Path: github.String(gallery.ContentDir + "/" + rec.Slug + ".md"),
			Mode: github.String(fileMode),
			Type: github.String("blob"),
			SHA:  recordBlob.SHA,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}

	commit, _, err := s.client.Git.CreateCommit(ctx, s.owner, s.repo, &github.Commit{
		Message: github.String("feat(gallery): add " + rec.Title),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: github.String(headSHA)}},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}

	_, _, err = s.client.Git.UpdateRef(ctx, s.owner, s.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + s.branch),
		Object: &github.GitObject{SHA: commit.SHA},
	}, false)
	if err != nil {
		return "", fmt.Errorf("update branch reference: %w", err)
	}

	log.Printf("[publish] committed %s to %s/%s@%s", rec.Slug, s.owner, s.repo, s.branch)
	return "Saved to GitHub successfully! Site rebuild triggered.", nil
}

// createBlob uploads content as a base64-encoded git blob.
func (s *Store) createBlob(ctx context.Context, content []byte) (*github.Blob, error) {
	blob, _, err := s.client.Git.CreateBlob(ctx, s.owner, s.repo, &github.Blob{
		Content:  github.String(base64.StdEncoding.EncodeToString(content)),
		Encoding: github.String("base64"),
	})
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// RawURL returns the publicly fetchable raw-content URL for an uploaded
// image file in owner/repo on branch.
func RawURL(owner, repo, branch, filename string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s/%s",
		owner, repo, branch, gallery.ImageDir, filename)
}
