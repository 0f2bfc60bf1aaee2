/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package places

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Place is a single entry of the persisted directory.
//
// Optional numeric fields are pointers so that "not provided" survives a
// round trip through the storage codecs. String fields and Amenities are
// always emitted, defaulting to the empty value.
type Place struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	AddressText   string   `json:"address_text" yaml:"address_text"`
	Latitude      *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	CostPerPerson *int     `json:"cost_per_person,omitempty" yaml:"cost_per_person,omitempty"`
	OpeningHours  string   `json:"opening_hours" yaml:"opening_hours"`
	Link          string   `json:"link" yaml:"link"`
	Image         string   `json:"image" yaml:"image"`
	Amenities     []string `json:"amenities" yaml:"amenities"`
}

// HasImage reports whether an image has been attached to the place.
func (p Place) HasImage() bool {
	return p.Image != ""
}

// Draft is a candidate for a new Place, as produced by extraction.
//
// Numeric fields arrive as Number because extraction sources are free text:
// "31.23", 31.23 and "人均45元" are all acceptable inputs.
type Draft struct {
	Title         string   `json:"title" jsonschema:"required,description=Name of the place"`
	Description   string   `json:"description,omitempty" jsonschema:"description=Short description of the place and why it is good to work or relax in"`
	AddressText   string   `json:"address_text" jsonschema:"required,description=Free-form street address"`
	Latitude      Number   `json:"latitude,omitempty" jsonschema:"description=Latitude as a decimal number"`
	Longitude     Number   `json:"longitude,omitempty" jsonschema:"description=Longitude as a decimal number"`
	CostPerPerson Number   `json:"cost_per_person,omitempty" jsonschema:"description=Average cost per person as an integer amount of yuan"`
	OpeningHours  string   `json:"opening_hours,omitempty" jsonschema:"description=Opening hours formatted HH:MM-HH:MM"`
	Link          string   `json:"link,omitempty" jsonschema:"description=URL of the place on a map or review site"`
	Amenities     []string `json:"amenities,omitempty" jsonschema:"description=Amenity tags offered by the place"`
}

// Validate checks that the fields required for a new Place are present.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return fmt.Errorf("%w: title", ErrMissingField)
	case strings.TrimSpace(d.AddressText) == "":
		return fmt.Errorf("%w: address_text", ErrMissingField)
	}
	return nil
}

// Number is a numeric-looking value taken from free text.
type Number string

var numberPattern = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// UnmarshalJSON accepts JSON numbers, strings and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(str))
		return nil
	default:
		var f json.Number
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		*n = Number(f.String())
		return nil
	}
}

// Float parses the first number found in n.
func (n Number) Float() (float64, bool) {
	m := numberPattern.FindString(string(n))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the first number found in n, truncating any fraction.
func (n Number) Int() (int, bool) {
	f, ok := n.Float()
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (n Number) floatPtr() *float64 {
	if f, ok := n.Float(); ok {
		return &f
	}
	return nil
}

func (n Number) intPtr() *int {
	if i, ok := n.Int(); ok {
		return &i
	}
	return nil
}

// SanitizeURL trims whitespace and strips the angle brackets and quotes that
// leak in from markdown link syntax. Interior characters are untouched.
func SanitizeURL(s string) string {
	for {
		t := strings.Trim(strings.TrimSpace(s), "<>\"'`“”‘’")
		if t == s {
			return t
		}
		s = t
	}
}

// normalizeAmenities drops blanks and duplicates while preserving order.
// The result is never nil.
func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
