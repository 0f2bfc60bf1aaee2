/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package places

import (
	"encoding/json"
	"strings"
)

// Optional is a value that is either provided or absent. A JSON null is
// treated the same as an absent key, so a null never clears a field.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a provided Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Update is a sparse change to an existing Place. Only provided fields are
// applied.
type Update struct {
	Title         Optional[string]   `json:"title"`
	Description   Optional[string]   `json:"description"`
	AddressText   Optional[string]   `json:"address_text"`
	Latitude      Optional[Number]   `json:"latitude"`
	Longitude     Optional[Number]   `json:"longitude"`
	CostPerPerson Optional[Number]   `json:"cost_per_person"`
	OpeningHours  Optional[string]   `json:"opening_hours"`
	Link          Optional[string]   `json:"link"`
	Amenities     Optional[[]string] `json:"amenities"`
}

// Empty reports whether the update carries no provided field.
func (u Update) Empty() bool {
	return !u.Title.IsSet() && !u.Description.IsSet() && !u.AddressText.IsSet() &&
		!u.Latitude.IsSet() && !u.Longitude.IsSet() && !u.CostPerPerson.IsSet() &&
		!u.OpeningHours.IsSet() && !u.Link.IsSet() && !u.Amenities.IsSet()
}

// ApplyTo overlays the provided fields onto a copy of p and returns it.
// Numeric fields that do not parse leave the existing value in place, an
// empty title is ignored, and Amenities replaces the prior collection.
func (u Update) ApplyTo(p Place) Place {
	out := p

	if v, ok := u.Title.Get(); ok && strings.TrimSpace(v) != "" {
		out.Title = strings.TrimSpace(v)
	}
	if v, ok := u.Description.Get(); ok {
		out.Description = v
	}
	if v, ok := u.AddressText.Get(); ok {
		out.AddressText = v
	}
	if v, ok := u.Latitude.Get(); ok {
		if f := v.floatPtr(); f != nil {
			out.Latitude = f
		}
	}
	if v, ok := u.Longitude.Get(); ok {
		if f := v.floatPtr(); f != nil {
			out.Longitude = f
		}
	}
	if v, ok := u.CostPerPerson.Get(); ok {
		if i := v.intPtr(); i != nil {
			out.CostPerPerson = i
		}
	}
	if v, ok := u.OpeningHours.Get(); ok {
		out.OpeningHours = v
	}
	if v, ok := u.Link.Get(); ok {
		out.Link = SanitizeURL(v)
	}
	if v, ok := u.Amenities.Get(); ok {
		out.Amenities = normalizeAmenities(v)
	}
	return out
}
