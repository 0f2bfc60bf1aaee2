/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"chainguard.dev/placebot/agents/schema"
	"chainguard.dev/placebot/places"
)

func TestReflectDraft(t *testing.T) {
	s := schema.ReflectType[places.Draft]()

	for _, field := range []string{"title", "address_text"} {
		if !slices.Contains(s.Required, field) {
			t.Errorf("Required = %v, missing %q", s.Required, field)
		}
	}
	if slices.Contains(s.Required, "latitude") {
		t.Errorf("latitude should be optional, Required = %v", s.Required)
	}

	hours, ok := s.Properties.Get("opening_hours")
	if !ok {
		t.Fatal("missing opening_hours property")
	}
	if !strings.Contains(hours.Description, "HH:MM-HH:MM") {
		t.Errorf("opening_hours description = %q", hours.Description)
	}

	amenities, ok := s.Properties.Get("amenities")
	if !ok || amenities.Type != "array" {
		t.Fatalf("amenities = %+v, want an array property", amenities)
	}
}

func TestReflectOmitsMetaKeywords(t *testing.T) {
	type sample struct {
		Name string `json:"name" jsonschema:"required"`
	}

	b, err := json.Marshal(schema.ReflectType[sample]())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, kw := range []string{`"$schema"`, `"$id"`, `"$ref"`} {
		if strings.Contains(string(b), kw) {
			t.Errorf("schema %s contains %s", b, kw)
		}
	}
}
