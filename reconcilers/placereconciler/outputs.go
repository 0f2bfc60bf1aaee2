/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package placereconciler

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Output keys consumed by the workflow that opens the pull request.
const (
	KeyBranchName    = "branch_name"
	KeyPlaceTitle    = "place_title"
	KeyPlaceID       = "place_id"
	KeyIsUpdate      = "is_update"
	KeyCommitMessage = "commit_message"
	KeyError         = "error"
	KeyErrorMessage  = "error_message"
)

// Outputs writes step outputs. With a path it appends to that file in the
// GITHUB_OUTPUT format; otherwise it prints ::set-output lines to W.
type Outputs struct {
	path string
	w    io.Writer
}

// NewOutputs returns Outputs for the GITHUB_OUTPUT file at path, falling
// back to legacy lines on w when path is empty.
func NewOutputs(path string, w io.Writer) *Outputs {
	return &Outputs{path: path, w: w}
}

var newDelimiter = func() string {
	return "ghadelimiter_" + uuid.NewString()
}

// Set writes one output.
func (o *Outputs) Set(key, value string) error {
	if o.path == "" {
		_, err := fmt.Fprintf(o.w, "::set-output name=%s::%s\n", key, escapeCommand(value))
		return err
	}

	var line string
	if strings.ContainsAny(value, "\r\n") {
		d := newDelimiter()
		line = fmt.Sprintf("%s<<%s\n%s\n%s\n", key, d, value, d)
	} else {
		line = fmt.Sprintf("%s=%s\n", key, value)
	}

	f, err := os.OpenFile(o.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening outputs file: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("writing output %s: %w", key, err)
	}
	return f.Close()
}

// escapeCommand escapes a workflow command value.
func escapeCommand(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// Success reports a completed run.
func (o *Outputs) Success(out *Outcome) error {
	for _, kv := range [][2]string{
		{KeyBranchName, out.Branch},
		{KeyPlaceTitle, out.Place.Title},
		{KeyPlaceID, out.Place.ID},
		{KeyIsUpdate, strconv.FormatBool(out.IsUpdate)},
		{KeyCommitMessage, out.CommitMessage},
		{KeyError, "false"},
	} {
		if err := o.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Failure reports a failed run.
func (o *Outputs) Failure(err error) error {
	if werr := o.Set(KeyError, "true"); werr != nil {
		return werr
	}
	return o.Set(KeyErrorMessage, err.Error())
}
