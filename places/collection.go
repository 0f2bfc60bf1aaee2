/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package places

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMissingField is returned when a Draft lacks a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrNotFound is returned when no place matches the requested name.
	ErrNotFound = errors.New("place not found")

	// ErrAmbiguousMatch is returned when more than one place matches the
	// requested name.
	ErrAmbiguousMatch = errors.New("ambiguous place name")
)

// AmbiguousMatchError carries the name and the ids that matched it.
type AmbiguousMatchError struct {
	Name string
	IDs  []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d places are named %q (%s), refusing to guess", len(e.IDs), e.Name, strings.Join(e.IDs, ", "))
}

// Unwrap makes errors.Is(err, ErrAmbiguousMatch) hold.
func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}

// newID generates record ids. Tests can override it to force collisions by
// assigning a custom function to newID.
var newID = defaultNewID

func defaultNewID() string {
	return uuid.NewString()
}

// Collection is the ordered set of places. Order is insertion order and
// updates never reorder.
type Collection []Place

// IDs returns the set of ids present in the collection.
func (c Collection) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c))
	for _, p := range c {
		ids[p.ID] = struct{}{}
	}
	return ids
}

// MatchTitle returns the indexes of places whose title equals name,
// compared case-insensitively after trimming whitespace.
func (c Collection) MatchTitle(name string) []int {
	want := strings.ToLower(strings.TrimSpace(name))
	var idx []int
	for i, p := range c {
		if strings.ToLower(strings.TrimSpace(p.Title)) == want {
			idx = append(idx, i)
		}
	}
	return idx
}

// Add validates d, assigns it a fresh unique id, appends it and returns the
// new Place.
func (c *Collection) Add(d Draft) (Place, error) {
	if err := d.Validate(); err != nil {
		return Place{}, err
	}

	ids := c.IDs()
	id := newID()
	for {
		if _, taken := ids[id]; !taken {
			break
		}
		id = newID()
	}

	p := Place{
		ID:            id,
		Title:         strings.TrimSpace(d.Title),
		Description:   d.Description,
		AddressText:   strings.TrimSpace(d.AddressText),
		Latitude:      d.Latitude.floatPtr(),
		Longitude:     d.Longitude.floatPtr(),
		CostPerPerson: d.CostPerPerson.intPtr(),
		OpeningHours:  d.OpeningHours,
		Link:          SanitizeURL(d.Link),
		Amenities:     normalizeAmenities(d.Amenities),
	}
	*c = append(*c, p)
	return p, nil
}

// Apply locates the single place titled name and overlays u onto it in
// place. The collection is left untouched on error.
func (c Collection) Apply(name string, u Update) (Place, error) {
	idx := c.MatchTitle(name)
	switch len(idx) {
	case 0:
		return Place{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	case 1:
	default:
		ids := make([]string, 0, len(idx))
		for _, i := range idx {
			ids = append(ids, c[i].ID)
		}
		return Place{}, &AmbiguousMatchError{Name: name, IDs: ids}
	}

	updated := u.ApplyTo(c[idx[0]])
	c[idx[0]] = updated
	return updated, nil
}

// SetImage records the image path of the place with the given id.
func (c Collection) SetImage(id, image string) error {
	for i := range c {
		if c[i].ID == id {
			c[i].Image = image
			return nil
		}
	}
	return fmt.Errorf("%w: id %s", ErrNotFound, id)
}
