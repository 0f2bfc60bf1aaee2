/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeComments struct {
	bodies []string
	err    error
	calls  int
}

func (f *fakeComments) ListComments(context.Context, int) ([]string, error) {
	f.calls++
	return f.bodies, f.err
}

const (
	asset   = "https://github.com/user-attachments/assets/0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"
	legacy  = "https://user-images.githubusercontent.com/1/abc.png"
	photo   = "https://example.com/photos/front.JPG"
	private = "https://private-user-images.githubusercontent.com/9/xyz.png?jwt=abc"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{{
		name: "nothing",
		text: "no images here, see https://example.com/page",
	}, {
		name: "priority order beats text order",
		text: "![shot](" + photo + ")\n<img src=\"" + asset + "\">",
		want: []string{asset, photo},
	}, {
		name: "markdown angle brackets are stripped",
		text: "![a](<" + photo + ">)",
		want: []string{photo},
	}, {
		name: "legacy and raw hosts",
		text: private + " and " + legacy,
		want: []string{legacy, private},
	}, {
		name: "duplicates collapse",
		text: asset + "\n" + asset + "\n![x](" + asset + ")",
		want: []string{asset},
	}, {
		name: "extension must end the url",
		text: "menu at https://example.com/page.png.html",
	}, {
		name: "sentence punctuation after the extension",
		text: "photo: https://example.com/a.png, and https://example.com/b.webp?w=2。",
		want: []string{"https://example.com/a.png", "https://example.com/b.webp?w=2"},
	}, {
		name: "relative markdown targets are ignored",
		text: "![](./local/photo.png)",
	}, {
		name: "angle bracket target with spaces",
		text: "![截图](<https://example.com/a b.png>)",
		want: []string{"https://example.com/a%20b.png"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Scan(tt.text)); diff != "" {
				t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveFirstPrefersComments(t *testing.T) {
	r := Resolver{
		Comments: &fakeComments{bodies: []string{"thanks!", "here: " + photo}},
		Number:   7,
	}
	if got := r.ResolveFirst(context.Background(), "body "+asset); got != photo {
		t.Errorf("ResolveFirst() = %q, want the comment image %q", got, photo)
	}
}

func TestResolveAll(t *testing.T) {
	comments := &fakeComments{bodies: []string{"![s](" + asset + ")"}}
	r := Resolver{Comments: comments, Number: 7}
	body := asset + "\n![p](" + photo + ")"

	want := []string{asset, photo}
	for range 2 {
		if diff := cmp.Diff(want, r.ResolveAll(context.Background(), body)); diff != "" {
			t.Errorf("ResolveAll() mismatch (-want +got):\n%s", diff)
		}
	}
	if comments.calls != 2 {
		t.Errorf("ListComments called %d times, want 2", comments.calls)
	}
}

func TestResolveCommentFailureFallsBackToBody(t *testing.T) {
	r := Resolver{Comments: &fakeComments{err: errors.New("502 bad gateway")}}

	if got := r.ResolveFirst(context.Background(), legacy); got != legacy {
		t.Errorf("ResolveFirst() = %q, want %q", got, legacy)
	}
	if got := r.ResolveAll(context.Background(), "no image"); len(got) != 0 {
		t.Errorf("ResolveAll() = %v, want none", got)
	}
}

func TestResolveWithoutCommentLister(t *testing.T) {
	var r Resolver
	if got := r.ResolveFirst(context.Background(), ""); got != "" {
		t.Errorf("ResolveFirst() = %q, want empty", got)
	}
}
