/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package issueform reads place submissions out of GitHub issue forms.
//
// ParseForm turns the rendered form body into sparse field values and the
// checked amenity boxes. IsUpdateTitle recognizes the update marker in an
// issue title. Resolver locates image attachments in the issue body and
// its comments with an ordered cascade of URL matchers.
package issueform
