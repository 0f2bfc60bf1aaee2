/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitpublisher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestContributor(t *testing.T) {
	tests := []struct {
		name               string
		login, nick, email string
		want               Identity
	}{{
		name:  "all fields",
		login: "octocat",
		nick:  "The Octocat",
		email: "octo@example.com",
		want:  Identity{Name: "The Octocat", Email: "octo@example.com"},
	}, {
		name:  "login only",
		login: "octocat",
		want:  Identity{Name: "octocat", Email: "octocat@users.noreply.github.com"},
	}, {
		name: "nothing",
		want: Identity{Name: botName, Email: botEmail},
	}, {
		name:  "email without login",
		email: "someone@example.com",
		want:  Identity{Name: botName, Email: "someone@example.com"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Contributor(tt.login, tt.nick, tt.email)); diff != "" {
				t.Errorf("Contributor() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBranchName(t *testing.T) {
	now := time.UnixMilli(1760659200123)
	if got, want := BranchName(false, "abc", now), "auto-add-abc-1760659200123"; got != want {
		t.Errorf("BranchName() = %q, want %q", got, want)
	}
	if got, want := BranchName(true, "abc", now), "auto-update-abc-1760659200123"; got != want {
		t.Errorf("BranchName() = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// initCheckout creates a checkout with one commit and a bare origin.
func initCheckout(t *testing.T) (string, *git.Repository) {
	t.Helper()

	originDir := t.TempDir()
	origin, err := git.PlainInit(originDir, true)
	require.NoError(t, err)

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{originDir}})
	require.NoError(t, err)

	writeFile(t, dir, "data/places.yaml", "[]\n")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("data/places.yaml")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@test", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, origin
}

func fileAt(t *testing.T, c *object.Commit, path string) string {
	t.Helper()
	f, err := c.File(path)
	require.NoError(t, err, "file %s in commit", path)
	r, err := f.Reader()
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestPublish(t *testing.T) {
	dir, origin := initCheckout(t)

	writeFile(t, dir, "data/places.yaml", "- id: abc\n  title: Seesaw\n")
	writeFile(t, dir, "images/abc/main.png", "png")
	writeFile(t, dir, "scratch.txt", "not staged")

	when := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	p := New(dir, nil, WithClock(func() time.Time { return when }))
	author := Contributor("octocat", "", "")

	hash, err := p.Publish(context.Background(), Change{
		Branch:  "auto-add-abc-1",
		Message: "Add place: Seesaw",
		Author:  author,
		Paths:   []string{filepath.Join(dir, "data", "places.yaml"), "images/abc"},
	})
	require.NoError(t, err)

	ref, err := origin.Reference(plumbing.NewBranchReferenceName("auto-add-abc-1"), true)
	require.NoError(t, err, "branch on origin")
	if ref.Hash().String() != hash {
		t.Errorf("origin branch at %s, want %s", ref.Hash(), hash)
	}

	c, err := origin.CommitObject(ref.Hash())
	require.NoError(t, err)
	if c.Author.Name != author.Name || c.Author.Email != author.Email || !c.Author.When.Equal(when) {
		t.Errorf("Author = %v, want %v at %v", c.Author, author, when)
	}
	if c.Committer.Name != author.Name {
		t.Errorf("Committer = %v, want %v", c.Committer, author)
	}
	if c.Message != "Add place: Seesaw" {
		t.Errorf("Message = %q", c.Message)
	}
	if got := fileAt(t, c, "data/places.yaml"); got != "- id: abc\n  title: Seesaw\n" {
		t.Errorf("data/places.yaml = %q", got)
	}
	if got := fileAt(t, c, "images/abc/main.png"); got != "png" {
		t.Errorf("images/abc/main.png = %q", got)
	}
	if _, err := c.File("scratch.txt"); err == nil {
		t.Error("unstaged scratch.txt was committed")
	}

	b, err := os.ReadFile(filepath.Join(dir, "scratch.txt"))
	require.NoError(t, err)
	if string(b) != "not staged" {
		t.Errorf("working tree file changed to %q", b)
	}
}

func TestPublishFailures(t *testing.T) {
	valid := Change{
		Branch:  "auto-add-abc-1",
		Message: "Add place: x",
		Author:  Contributor("", "", ""),
		Paths:   []string{"data/places.yaml"},
	}

	tests := []struct {
		name   string
		setup  func(t *testing.T, dir string)
		change func(c Change) Change
		notGit bool
	}{{
		name:   "not a repository",
		notGit: true,
	}, {
		name: "empty branch",
		change: func(c Change) Change {
			c.Branch = ""
			return c
		},
	}, {
		name: "nothing staged",
		change: func(c Change) Change {
			c.Paths = nil
			return c
		},
	}, {
		name: "path outside checkout",
		change: func(c Change) Change {
			c.Paths = []string{"../elsewhere"}
			return c
		},
	}, {
		name: "branch exists",
		setup: func(t *testing.T, dir string) {
			repo, err := git.PlainOpen(dir)
			require.NoError(t, err)
			head, err := repo.Head()
			require.NoError(t, err)
			require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("auto-add-abc-1"), head.Hash())))
		},
	}, {
		name: "no origin",
		setup: func(t *testing.T, dir string) {
			repo, err := git.PlainOpen(dir)
			require.NoError(t, err)
			require.NoError(t, repo.DeleteRemote("origin"))
			writeFile(t, dir, "data/places.yaml", "changed\n")
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if !tt.notGit {
				dir, _ = initCheckout(t)
			}
			if tt.setup != nil {
				tt.setup(t, dir)
			}
			c := valid
			if tt.change != nil {
				c = tt.change(c)
			}

			_, err := New(dir, nil).Publish(context.Background(), c)
			if !errors.Is(err, ErrPublication) {
				t.Fatalf("Publish() error = %v, want ErrPublication", err)
			}
		})
	}
}
