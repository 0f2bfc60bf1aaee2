/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"chainguard.dev/placebot/places/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite the place collection in another format",
		Long: `Convert reads the collection with the codec matching --from and writes it
with the codec matching --to, preserving order and every field.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := convert(from, to)
			if err != nil {
				return err
			}
			_, err = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Converted %d places from %s to %s\n", n, from, to)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "data/places.json", "collection to read")
	cmd.Flags().StringVar(&to, "to", "data/places.yaml", "collection to write")
	return cmd
}

func convert(from, to string) (int, error) {
	if filepath.Clean(from) == filepath.Clean(to) {
		return 0, fmt.Errorf("--from and --to are both %s", from)
	}
	src, err := store.Open(from)
	if err != nil {
		return 0, err
	}
	dst, err := store.Open(to)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(dst.Path); err == nil {
		return 0, fmt.Errorf("%s already exists", dst.Path)
	}

	c, err := src.Load()
	if err != nil {
		return 0, err
	}
	if err := dst.Save(c); err != nil {
		return 0, err
	}
	return len(c), nil
}
