/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package extractor turns issue text or a screenshot into a place Draft or
// an update request by asking a chat model for JSON.
package extractor

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chainguard.dev/placebot/agents/executor/chatexecutor"
	"chainguard.dev/placebot/agents/promptbuilder"
	"chainguard.dev/placebot/agents/result"
	"chainguard.dev/placebot/agents/schema"
	"chainguard.dev/placebot/issueform"
	"chainguard.dev/placebot/places"
	"github.com/chainguard-dev/clog"
)

var (
	// ErrExtraction is returned when the model call fails or its reply is
	// not a usable JSON object.
	ErrExtraction = errors.New("extraction failed")

	// ErrUnsupportedMode is returned for an update requested in screenshot
	// mode.
	ErrUnsupportedMode = errors.New("screenshot mode only supports new places, not updates")
)

// temperature is kept low so repeated runs extract the same fields.
const temperature = 0.1

// UpdateRequest names an existing place and the fields to change.
type UpdateRequest struct {
	PlaceName string        `json:"place_name"`
	Updates   places.Update `json:"updates"`
}

// Extraction holds exactly one of Draft or Update.
type Extraction struct {
	Draft  *places.Draft
	Update *UpdateRequest
}

// IsUpdate reports whether the extraction is an update request.
func (e *Extraction) IsUpdate() bool {
	return e.Update != nil
}

// Extractor extracts place data with a chat Provider.
type Extractor struct {
	provider chatexecutor.Provider
}

// New returns an Extractor that calls p.
func New(p chatexecutor.Provider) *Extractor {
	return &Extractor{provider: p}
}

type issue struct {
	XMLName xml.Name `xml:"issue"`
	Title   string   `xml:"title"`
	Body    string   `xml:"body"`
}

type notes struct {
	XMLName xml.Name `xml:"notes"`
	Text    string   `xml:",chardata"`
}

// updateSchema documents the update reply shape; UpdateRequest itself
// reflects poorly because of its Optional fields.
type updateSchema struct {
	PlaceName string `json:"place_name" jsonschema:"required,description=Name of the existing place to update"`
	Updates   struct {
		Title         string   `json:"title,omitempty" jsonschema:"description=New name"`
		Description   string   `json:"description,omitempty"`
		AddressText   string   `json:"address_text,omitempty"`
		Latitude      float64  `json:"latitude,omitempty"`
		Longitude     float64  `json:"longitude,omitempty"`
		CostPerPerson int      `json:"cost_per_person,omitempty"`
		OpeningHours  string   `json:"opening_hours,omitempty" jsonschema:"description=HH:MM-HH:MM"`
		Link          string   `json:"link,omitempty"`
		Amenities     []string `json:"amenities,omitempty"`
	} `json:"updates" jsonschema:"required,description=Only the fields that change"`
}

// FromText extracts a new place, or an update request when isUpdate is
// set, from the issue title and body.
func (x *Extractor) FromText(ctx context.Context, title, body string, isUpdate bool) (*Extraction, error) {
	tmpl, contract := newPlacePrompt, schema.ReflectType[places.Draft]()
	if isUpdate {
		tmpl, contract = updatePrompt, schema.ReflectType[updateSchema]()
	}

	prompt, err := bindAll(tmpl,
		func(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
			return p.BindXML("issue", issue{Title: title, Body: body})
		},
		func(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
			return p.BindJSON("schema", contract)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	text, err := x.complete(ctx, chatexecutor.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	if isUpdate {
		return decodeUpdate(text)
	}
	return decodeDraft(text)
}

// FromScreenshot extracts a new place from the screenshot at imagePath.
// Amenity boxes checked in the issue body replace the model's amenities
// when any are checked.
func (x *Extractor) FromScreenshot(ctx context.Context, imagePath, body string, isUpdate bool) (*Extraction, error) {
	if isUpdate {
		return nil, ErrUnsupportedMode
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading screenshot: %w", ErrExtraction, err)
	}

	prompt, err := bindAll(screenshotPrompt,
		func(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
			return p.BindXML("notes", notes{Text: body})
		},
		func(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
			return p.BindJSON("schema", schema.ReflectType[places.Draft]())
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	text, err := x.complete(ctx, chatexecutor.Request{
		Prompt: prompt,
		Images: []chatexecutor.Image{{MIMEType: mimeType(imagePath), Data: data}},
	})
	if err != nil {
		return nil, err
	}

	e, err := decodeDraft(text)
	if err != nil {
		return nil, err
	}
	if manual := issueform.ParseForm(body).Amenities(); len(manual) > 0 {
		clog.FromContext(ctx).With("amenities", manual).Info("Using amenities checked in the issue form")
		e.Draft.Amenities = manual
	}
	return e, nil
}

func (x *Extractor) complete(ctx context.Context, req chatexecutor.Request) (string, error) {
	req.System = systemInstructions
	req.Temperature = temperature

	text, err := x.provider.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	clog.FromContext(ctx).With("provider", x.provider.Name()).With("bytes", len(text)).Info("Model replied")
	return text, nil
}

func bindAll(p *promptbuilder.Prompt, binds ...func(*promptbuilder.Prompt) (*promptbuilder.Prompt, error)) (string, error) {
	p, err := p.BindJSON("amenities", issueform.KnownAmenities)
	if err != nil {
		return "", err
	}
	for _, bind := range binds {
		if p, err = bind(p); err != nil {
			return "", err
		}
	}
	return p.Build()
}

func decodeDraft(text string) (*Extraction, error) {
	d, err := result.Extract[places.Draft](text)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing new place: %w", ErrExtraction, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return &Extraction{Draft: &d}, nil
}

func decodeUpdate(text string) (*Extraction, error) {
	u, err := result.Extract[UpdateRequest](text)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing update: %w", ErrExtraction, err)
	}
	u.PlaceName = strings.TrimSpace(u.PlaceName)
	switch {
	case u.PlaceName == "":
		return nil, fmt.Errorf("%w: update names no place_name", ErrExtraction)
	case u.Updates.Empty():
		return nil, fmt.Errorf("%w: update for %q changes no field", ErrExtraction, u.PlaceName)
	}
	return &Extraction{Update: &u}, nil
}

func mimeType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
