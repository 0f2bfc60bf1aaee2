/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGitHubComments(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/places/issues/42/comments" {
			t.Errorf("path = %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 3, "body": "third"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/places/issues/42/comments?page=2>; rel="next"`, srv.URL))
		fmt.Fprint(w, `[{"id": 1, "body": "first"}, {"id": 2, "body": "second"}]`)
	}))
	defer srv.Close()

	ctx := context.Background()
	g := NewGitHubComments(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}), "octo", "places")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	g.Client.BaseURL = base

	got, err := g.ListComments(ctx, 42)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"first", "second", "third"}, got); diff != "" {
		t.Errorf("ListComments() mismatch (-want +got):\n%s", diff)
	}
}

func TestGitHubCommentsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewGitHubComments(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}), "octo", "places")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	g.Client.BaseURL = base

	_, err = g.ListComments(context.Background(), 1)
	require.Error(t, err)
}
