/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"chainguard.dev/placebot/places"
	"github.com/chainguard-dev/clog"
)

// matcher extracts candidate image URLs of one shape from text.
type matcher struct {
	name  string
	re    *regexp.Regexp
	clean func(string) string
}

// find returns the capture of every match: the whole match without
// groups, else the first non-empty group.
func (m matcher) find(text string) []string {
	var urls []string
	for _, sm := range m.re.FindAllStringSubmatch(text, -1) {
		raw := sm[0]
		for _, g := range sm[1:] {
			if g != "" {
				raw = g
				break
			}
		}
		if m.clean != nil {
			raw = m.clean(raw)
		}
		if u := places.SanitizeURL(raw); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

const urlTail = `[^\s)"'<>\]]+`

// matchers is evaluated in priority order.
var matchers = []matcher{{
	name: "user-attachments",
	re:   regexp.MustCompile(`https://github\.com/user-attachments/assets/[A-Za-z0-9-]+`),
}, {
	name: "user-images",
	re:   regexp.MustCompile(`https://user-images\.githubusercontent\.com/` + urlTail),
}, {
	// Only absolute http(s) targets; <...> targets may contain spaces.
	name:  "markdown-image",
	re:    regexp.MustCompile(`!\[[^\]]*\]\(\s*(?:<(https?://[^>\n]+)>|(https?://[^)\s]+))`),
	clean: func(s string) string { return strings.ReplaceAll(strings.TrimSpace(s), " ", "%20") },
}, {
	name: "raw-content",
	re:   regexp.MustCompile(`https://(?:raw|private-user-images)\.githubusercontent\.com/` + urlTail),
}, {
	// The extension (and optional query) must end the URL: only sentence
	// punctuation may follow before a delimiter or the end of the text.
	name: "image-extension",
	re:   regexp.MustCompile(`(?i)(https?://[^\s)"'<>\]]+\.(?:png|jpe?g|gif|webp)(?:\?[^\s)"'<>\]]*?)?)[.,;:!?，。]*(?:[\s)"'<>\]]|$)`),
}}

// Scan returns every image URL in text, grouped by matcher priority and
// deduplicated.
func Scan(text string) []string {
	var urls []string
	for _, m := range matchers {
		for _, u := range m.find(text) {
			if !slices.Contains(urls, u) {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// CommentLister returns the bodies of an issue's comments in order.
type CommentLister interface {
	ListComments(ctx context.Context, number int) ([]string, error)
}

// Resolver finds image attachments of one issue.
type Resolver struct {
	// Comments may be nil, in which case only the body is scanned.
	Comments CommentLister
	Number   int
}

// sources returns the comment bodies followed by the issue body. A
// failure to list comments is logged and treated as no comments.
func (r Resolver) sources(ctx context.Context, body string) []string {
	var texts []string
	if r.Comments != nil {
		comments, err := r.Comments.ListComments(ctx, r.Number)
		if err != nil {
			clog.FromContext(ctx).With("issue", r.Number).Warnf("Failed to list issue comments, scanning body only: %v", err)
		}
		texts = append(texts, comments...)
	}
	return append(texts, body)
}

// ResolveFirst returns the first image URL, scanning comments before the
// body and stopping at the first source with any match. It returns "" if
// nothing matched.
func (r Resolver) ResolveFirst(ctx context.Context, body string) string {
	for _, text := range r.sources(ctx, body) {
		if urls := Scan(text); len(urls) > 0 {
			return urls[0]
		}
	}
	return ""
}

// ResolveAll returns every image URL across comments then body,
// deduplicated in first-seen order.
func (r Resolver) ResolveAll(ctx context.Context, body string) []string {
	var urls []string
	for _, text := range r.sources(ctx, body) {
		for _, u := range Scan(text) {
			if !slices.Contains(urls, u) {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
