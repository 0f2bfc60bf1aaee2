/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result pulls structured answers out of model text. Models are
// told to answer with a bare JSON object but routinely wrap it in a fenced
// code block or a sentence of prose; both are tolerated here.
package result

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned by Extract when the response holds no JSON at all.
var ErrNoJSON = errors.New("no JSON found in response")

// ExtractJSON returns the JSON payload of responseText. In order it tries:
// the first ```json (or bare ```) fenced block, the whole trimmed text when
// it is valid JSON, and the outermost {...} span.
func ExtractJSON(responseText string) string {
	text := strings.ReplaceAll(responseText, "\r\n", "\n")

	if block, ok := fencedBlock(text); ok {
		return block
	}

	text = strings.TrimSpace(text)
	if text == "" || json.Valid([]byte(text)) {
		return text
	}

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// fencedBlock returns the content of the first fenced block whose opening
// fence is ```json or ``` on its own line.
func fencedBlock(text string) (string, bool) {
	var (
		buf     strings.Builder
		inBlock bool
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inBlock && (trimmed == "```json" || trimmed == "```"):
			inBlock = true
		case inBlock && trimmed == "```":
			return strings.TrimSpace(buf.String()), true
		case inBlock:
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if inBlock {
		// Unterminated fence: take what was there.
		return strings.TrimSpace(buf.String()), true
	}
	return "", false
}

// Extract locates the JSON payload in responseText and unmarshals it into T.
func Extract[T any](responseText string) (T, error) {
	var out T
	payload := ExtractJSON(responseText)
	if payload == "" {
		return out, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, err
	}
	return out, nil
}
