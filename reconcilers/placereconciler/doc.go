/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package placereconciler runs one place submission from an issue through
// to a pushed branch.
//
// A run moves through a fixed sequence of states:
//
//	Start -> Extracting -> Reconciling -> ImageResolving -> Persisting -> Publishing -> Done
//
// ImageResolving only runs for a new place without an image. Any error moves
// the run to Failed and skips every later state, so the storage file is only
// written once extraction, reconciliation and image download succeeded, and
// nothing is pushed unless the file was written. Downloaded images and the
// screenshot scratch directory are the only state a failed run can leave
// behind.
//
// The Outputs type reports the result to the surrounding workflow through
// GITHUB_OUTPUT, or as legacy ::set-output lines when that is unset.
package placereconciler
