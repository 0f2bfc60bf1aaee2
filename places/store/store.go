/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package store reads and writes the place collection file. The on-disk
// format is chosen by file extension; each format is a Codec that decodes
// bytes into an ordered collection and encodes it back.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"chainguard.dev/placebot/places"
	"gopkg.in/yaml.v3"
)

// ErrStorageNotFound is returned when the collection file does not exist.
var ErrStorageNotFound = errors.New("storage file not found")

// Codec converts between bytes and an ordered collection of places.
type Codec interface {
	Decode([]byte) (places.Collection, error)
	Encode(places.Collection) ([]byte, error)
}

// JSON stores the collection as an indented JSON array.
var JSON Codec = jsonCodec{}

// YAML stores the collection as a YAML sequence.
var YAML Codec = yamlCodec{}

// CodecFor picks the codec for path by its extension.
func CodecFor(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("no codec for %q (want .json, .yaml or .yml)", path)
	}
}

type jsonCodec struct{}

func (jsonCodec) Decode(b []byte) (places.Collection, error) {
	c := places.Collection{}
	if len(bytes.TrimSpace(b)) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return normalize(c), nil
}

func (jsonCodec) Encode(c places.Collection) ([]byte, error) {
	b, err := json.MarshalIndent(normalize(c), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return append(b, '\n'), nil
}

type yamlCodec struct{}

func (yamlCodec) Decode(b []byte) (places.Collection, error) {
	c := places.Collection{}
	if len(bytes.TrimSpace(b)) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return normalize(c), nil
}

func (yamlCodec) Encode(c places.Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(c)); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// normalize returns a copy of the collection in which every Amenities
// list is non-nil, so both codecs write empty lists instead of null. The
// argument is left untouched.
func normalize(c places.Collection) places.Collection {
	if c == nil {
		return places.Collection{}
	}
	c = slices.Clone(c)
	for i := range c {
		if c[i].Amenities == nil {
			c[i].Amenities = []string{}
		}
	}
	return c
}

// File is the collection file at Path, encoded with Codec.
type File struct {
	Path  string
	Codec Codec
}

// Open returns a File for path with the codec matching its extension. It
// does not touch the filesystem.
func Open(path string) (*File, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Codec: codec}, nil
}

// Load decodes the whole collection.
func (f *File) Load() (places.Collection, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStorageNotFound, f.Path)
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	c, err := f.Codec.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return c, nil
}

// Save encodes the whole collection and overwrites the file.
func (f *File) Save(c places.Collection) error {
	b, err := f.Codec.Encode(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(f.Path), err)
	}
	if err := os.WriteFile(f.Path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}
