/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package places defines the Place record of the directory and the
// reconciliation rules for merging submissions into the collection.
//
// A submission is either a Draft, which Collection.Add turns into a new
// Place with a fresh collision-checked id, or a sparse Update, which
// Collection.Apply overlays onto the one place whose title matches the
// requested name case-insensitively:
//
//	var c places.Collection
//	p, err := c.Add(places.Draft{Title: "Seesaw", AddressText: "静安区"})
//
//	_, err = c.Apply("seesaw", places.Update{Description: places.Some("quiet")})
//
// Zero or multiple title matches fail with ErrNotFound or ErrAmbiguousMatch
// and leave the collection untouched.
package places
