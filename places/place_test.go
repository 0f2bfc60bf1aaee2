/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package places

import (
	"encoding/json"
	"testing"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantF  float64
		wantI  int
		wantOK bool
	}{{
		name:   "json number",
		input:  `31.23`,
		wantF:  31.23,
		wantI:  31,
		wantOK: true,
	}, {
		name:   "numeric string",
		input:  `"121.47"`,
		wantF:  121.47,
		wantI:  121,
		wantOK: true,
	}, {
		name:   "decorated cost",
		input:  `"人均 45 元"`,
		wantF:  45,
		wantI:  45,
		wantOK: true,
	}, {
		name:   "negative",
		input:  `"-33.8"`,
		wantF:  -33.8,
		wantI:  -33,
		wantOK: true,
	}, {
		name:   "no digits",
		input:  `"unknown"`,
		wantOK: false,
	}, {
		name:   "null",
		input:  `null`,
		wantOK: false,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			f, ok := n.Float()
			if ok != tt.wantOK {
				t.Fatalf("Float() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if f != tt.wantF {
				t.Errorf("Float() = %v, want %v", f, tt.wantF)
			}
			if i, _ := n.Int(); i != tt.wantI {
				t.Errorf("Int() = %v, want %v", i, tt.wantI)
			}
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{{
		input: "<https://x/y.png>",
		want:  "https://x/y.png",
	}, {
		input: `  "'<<https://x/y.png>>'"  `,
		want:  "https://x/y.png",
	}, {
		input: "https://x/a'b<c>.png",
		want:  "https://x/a'b<c>.png",
	}, {
		input: "“https://x/y.png”",
		want:  "https://x/y.png",
	}, {
		input: "",
		want:  "",
	}}

	for _, tt := range tests {
		if got := SanitizeURL(tt.input); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOptional(t *testing.T) {
	var u Update
	if err := json.Unmarshal([]byte(`{"title": null, "link": "", "amenities": []}`), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if u.Title.IsSet() {
		t.Error("null title should be absent")
	}
	if v, ok := u.Link.Get(); !ok || v != "" {
		t.Errorf("Link = %q, %v; want provided empty string", v, ok)
	}
	if v, ok := u.Amenities.Get(); !ok || len(v) != 0 {
		t.Errorf("Amenities = %v, %v; want provided empty list", v, ok)
	}
	if u.Description.IsSet() || u.Latitude.IsSet() {
		t.Error("missing keys should be absent")
	}
	if u.Empty() {
		t.Error("Empty() = true for an update with provided fields")
	}
	if !(Update{}).Empty() {
		t.Error("Empty() = false for a zero update")
	}
}

func TestApplyToKeepsUntouchedFields(t *testing.T) {
	orig := fixture()[0]
	got := Update{
		Title:    Some("   "),
		Latitude: Some(Number("n/a")),
		Link:     Some("<https://example.com/new>"),
	}.ApplyTo(orig)

	if got.Title != orig.Title {
		t.Errorf("blank title overwrote %q with %q", orig.Title, got.Title)
	}
	if *got.Latitude != *orig.Latitude {
		t.Errorf("unparsable latitude changed value to %v", *got.Latitude)
	}
	if got.Link != "https://example.com/new" {
		t.Errorf("Link = %q", got.Link)
	}
}
