/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"chainguard.dev/placebot/places"
	"chainguard.dev/placebot/places/store"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var errInvalidCollection = errors.New("collection has problems")

var imagePath = regexp.MustCompile(`^([^/]+)/main\.(png|jpg|gif|webp)$`)

func newCheckCmd() *cobra.Command {
	var (
		data   string
		images string
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the place collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := store.Open(data)
			if err != nil {
				return err
			}
			c, err := f.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if list {
				renderPlaces(out, c)
			}

			problems := check(c, images)
			for _, p := range problems {
				_, _ = color.New(color.FgRed).Fprintln(out, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%w: %d found in %s", errInvalidCollection, len(problems), data)
			}
			_, err = color.New(color.FgGreen).Fprintf(out, "%d places OK\n", len(c))
			return err
		},
	}
	cmd.Flags().StringVar(&data, "data", "data/places.yaml", "collection to check")
	cmd.Flags().StringVar(&images, "images", "", "images directory; when set, image files must exist")
	cmd.Flags().BoolVar(&list, "list", false, "print the collection as a table")
	return cmd
}

// check reports every record that the pipeline could not have written.
func check(c places.Collection, imagesDir string) []string {
	var problems []string
	seen := make(map[string]int, len(c))
	for i, p := range c {
		where := fmt.Sprintf("place %d (%q)", i, p.Title)
		if _, err := uuid.Parse(p.ID); err != nil {
			problems = append(problems, fmt.Sprintf("%s: id %q is not a UUID", where, p.ID))
		}
		if j, ok := seen[p.ID]; ok {
			problems = append(problems, fmt.Sprintf("%s: id %s duplicates place %d", where, p.ID, j))
		}
		seen[p.ID] = i
		if strings.TrimSpace(p.Title) == "" {
			problems = append(problems, where+": empty title")
		}
		if strings.TrimSpace(p.AddressText) == "" {
			problems = append(problems, where+": empty address")
		}
		if !p.HasImage() {
			continue
		}
		m := imagePath.FindStringSubmatch(p.Image)
		if m == nil || m[1] != p.ID {
			problems = append(problems, fmt.Sprintf("%s: image %q is not %s/main.<ext>", where, p.Image, p.ID))
			continue
		}
		if imagesDir != "" {
			if _, err := os.Stat(filepath.Join(imagesDir, filepath.FromSlash(p.Image))); err != nil {
				problems = append(problems, fmt.Sprintf("%s: image %s: %v", where, p.Image, err))
			}
		}
	}
	return problems
}

func renderPlaces(w io.Writer, c places.Collection) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		}),
		tablewriter.WithHeader([]string{"ID", "Title", "Address", "Cost", "Image"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	for _, p := range c {
		cost := "-"
		if p.CostPerPerson != nil {
			cost = strconv.Itoa(*p.CostPerPerson)
		}
		_ = table.Append([]string{p.ID, p.Title, p.AddressText, cost, p.Image})
	}
	_ = table.Render()
}
