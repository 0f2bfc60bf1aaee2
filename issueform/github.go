/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform

import (
	"context"
	"fmt"

	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// GitHubComments lists issue comments through the GitHub REST API.
type GitHubComments struct {
	Client *github.Client
	Owner  string
	Repo   string
}

var _ CommentLister = (*GitHubComments)(nil)

// NewGitHubComments returns a lister for owner/repo authenticated with ts.
func NewGitHubComments(ctx context.Context, ts oauth2.TokenSource, owner, repo string) *GitHubComments {
	return &GitHubComments{
		Client: github.NewClient(oauth2.NewClient(ctx, ts)),
		Owner:  owner,
		Repo:   repo,
	}
}

// ListComments implements CommentLister, following every page.
func (g *GitHubComments) ListComments(ctx context.Context, number int) ([]string, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var bodies []string
	for {
		comments, resp, err := g.Client.Issues.ListComments(ctx, g.Owner, g.Repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments of %s/%s#%d: %w", g.Owner, g.Repo, number, err)
		}
		for _, c := range comments {
			bodies = append(bodies, c.GetBody())
		}
		if resp.NextPage == 0 {
			return bodies, nil
		}
		opts.Page = resp.NextPage
	}
}
