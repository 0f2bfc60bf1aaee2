/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitpublisher commits files of a local checkout to a fresh branch
// and pushes that branch to origin.
package gitpublisher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"golang.org/x/oauth2"
)

// ErrPublication is returned when any version-control step fails.
var ErrPublication = errors.New("publication failed")

const (
	botName  = "github-actions[bot]"
	botEmail = "41898282+github-actions[bot]@users.noreply.github.com"
)

// Identity is a commit author.
type Identity struct {
	Name  string
	Email string
}

// Contributor returns the commit identity for an issue author. The name
// falls back to the login and the email to the login's noreply address;
// without a login the Actions bot is used.
func Contributor(login, name, email string) Identity {
	login, name, email = strings.TrimSpace(login), strings.TrimSpace(name), strings.TrimSpace(email)
	if login == "" && name == "" && email == "" {
		return Identity{Name: botName, Email: botEmail}
	}
	id := Identity{Name: name, Email: email}
	if id.Name == "" {
		id.Name = login
	}
	if id.Name == "" {
		id.Name = botName
	}
	if id.Email == "" {
		if login != "" {
			id.Email = login + "@users.noreply.github.com"
		} else {
			id.Email = botEmail
		}
	}
	return id
}

// BranchName returns the branch for adding or updating place id at now,
// e.g. "auto-add-<id>-1760659200000".
func BranchName(update bool, id string, now time.Time) string {
	kind := "add"
	if update {
		kind = "update"
	}
	return fmt.Sprintf("auto-%s-%s-%d", kind, id, now.UnixMilli())
}

// Change is one commit to publish.
type Change struct {
	Branch  string
	Message string
	Author  Identity
	// Paths are files or directories, absolute or relative to the
	// checkout root, to stage.
	Paths []string
}

// Publisher publishes changes from the checkout at Dir.
type Publisher struct {
	dir         string
	remote      string
	tokenSource oauth2.TokenSource
	now         func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRemote pushes to remote instead of "origin".
func WithRemote(remote string) Option {
	return func(p *Publisher) { p.remote = remote }
}

// WithClock replaces time.Now for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New returns a Publisher for the checkout at dir. The token source may be
// nil when the remote needs no credentials.
func New(dir string, ts oauth2.TokenSource, opts ...Option) *Publisher {
	p := &Publisher{
		dir:         dir,
		remote:      git.DefaultRemoteName,
		tokenSource: ts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish creates c.Branch at HEAD without touching the working tree,
// stages c.Paths, commits them as c.Author and pushes the branch. It
// returns the new commit hash.
func (p *Publisher) Publish(ctx context.Context, c Change) (string, error) {
	log := clog.FromContext(ctx).With("branch", c.Branch)

	switch {
	case c.Branch == "":
		return "", fmt.Errorf("%w: branch name cannot be empty", ErrPublication)
	case c.Message == "":
		return "", fmt.Errorf("%w: commit message cannot be empty", ErrPublication)
	case len(c.Paths) == 0:
		return "", fmt.Errorf("%w: nothing to stage", ErrPublication)
	}

	repo, err := git.PlainOpenWithOptions(p.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrPublication, p.dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: getting worktree: %w", ErrPublication, err)
	}

	ref, err := createBranch(repo, c.Branch)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublication, err)
	}
	log.Info("Created branch")

	root := wt.Filesystem.Root()
	for _, path := range c.Paths {
		rel, err := relativeTo(root, path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPublication, err)
		}
		if _, err := wt.Add(rel); err != nil {
			return "", fmt.Errorf("%w: staging %s: %w", ErrPublication, rel, err)
		}
		log.With("path", rel).Info("Staged")
	}

	sig := &object.Signature{Name: c.Author.Name, Email: c.Author.Email, When: p.now()}
	hash, err := wt.Commit(c.Message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return "", fmt.Errorf("%w: committing: %w", ErrPublication, err)
	}
	log.With("commit", hash.String()).With("author", c.Author.Name).Info("Committed")

	if err := p.push(ctx, repo, ref); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublication, err)
	}
	return hash.String(), nil
}

// createBranch points a new branch at HEAD and makes it the current
// branch. Files in the working tree are left as they are.
func createBranch(repo *git.Repository, name string) (plumbing.ReferenceName, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err == nil {
		return "", fmt.Errorf("branch %s already exists", name)
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return "", fmt.Errorf("setting branch reference: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, refName)); err != nil {
		return "", fmt.Errorf("switching HEAD: %w", err)
	}
	return refName, nil
}

// relativeTo returns path relative to root in slash form, rejecting paths
// outside root.
func relativeTo(root, path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, filepath.Clean(full))
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the checkout", path)
	}
	return filepath.ToSlash(rel), nil
}

func (p *Publisher) auth() (transport.AuthMethod, error) {
	if p.tokenSource == nil {
		return nil, nil
	}
	token, err := p.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{
		Username: "unused-when-using-access-tokens",
		Password: token.AccessToken,
	}, nil
}

func (p *Publisher) push(ctx context.Context, repo *git.Repository, ref plumbing.ReferenceName) error {
	log := clog.FromContext(ctx)

	auth, err := p.auth()
	if err != nil {
		return err
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", ref, ref))
	log.Infof("Pushing %s to %s", refSpec, p.remote)

	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: p.remote,
		Auth:       auth,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	}); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			log.Info("Branch already up to date")
			return nil
		}
		return fmt.Errorf("pushing: %w", err)
	}
	return nil
}
