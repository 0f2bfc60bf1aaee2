/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package placereconciler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"chainguard.dev/placebot/agents/agenttrace"
	"chainguard.dev/placebot/extractor"
	"chainguard.dev/placebot/issueform"
	"chainguard.dev/placebot/places"
	"chainguard.dev/placebot/places/store"
	"chainguard.dev/placebot/reconcilers/placereconciler/gitpublisher"
	"chainguard.dev/placebot/reconcilers/placereconciler/imagestore"
	"github.com/chainguard-dev/clog"
)

// ErrMissingAttachments is returned in screenshot mode when the issue does
// not carry both a screenshot and a place photo.
var ErrMissingAttachments = errors.New("screenshot mode needs both a screenshot and a place photo")

// State is a step of a run.
type State string

const (
	Start          State = "start"
	Extracting     State = "extracting"
	Reconciling    State = "reconciling"
	ImageResolving State = "resolving image"
	Persisting     State = "persisting"
	Publishing     State = "publishing"
	Done           State = "done"
	Failed         State = "failed"
)

// Issue is the submission being processed.
type Issue struct {
	Number      int
	Title       string
	Body        string
	AuthorLogin string
	AuthorName  string
	AuthorEmail string
	// Screenshot selects extraction from an attached screenshot.
	Screenshot bool
}

// Extractor turns an issue into a place draft or update.
type Extractor interface {
	FromText(ctx context.Context, title, body string, isUpdate bool) (*extractor.Extraction, error)
	FromScreenshot(ctx context.Context, imagePath, body string, isUpdate bool) (*extractor.Extraction, error)
}

// AttachmentResolver finds image URLs attached to the issue.
type AttachmentResolver interface {
	ResolveFirst(ctx context.Context, body string) string
	ResolveAll(ctx context.Context, body string) []string
}

// ImageStore downloads images.
type ImageStore interface {
	Dir() string
	SavePlaceImage(ctx context.Context, id, rawURL string) (string, error)
	Download(ctx context.Context, rawURL, dir, base string) (string, error)
}

// Publisher commits and pushes a change.
type Publisher interface {
	Publish(ctx context.Context, c gitpublisher.Change) (string, error)
}

var (
	_ Extractor          = (*extractor.Extractor)(nil)
	_ AttachmentResolver = issueform.Resolver{}
	_ ImageStore         = (*imagestore.Store)(nil)
	_ Publisher          = (*gitpublisher.Publisher)(nil)
)

// Outcome describes a successful run.
type Outcome struct {
	Place         places.Place
	IsUpdate      bool
	Branch        string
	CommitMessage string
	// Commit is empty for a dry run.
	Commit string
}

// Reconciler processes issues against one storage file.
type Reconciler struct {
	extractor Extractor
	resolver  AttachmentResolver
	images    ImageStore
	storage   *store.File
	publisher Publisher
	now       func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher publishes each run with p. Without a publisher runs stop
// after the storage file is written.
func WithPublisher(p Publisher) Option {
	return func(r *Reconciler) { r.publisher = p }
}

// WithClock replaces time.Now for branch names.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New returns a Reconciler.
func New(x Extractor, resolver AttachmentResolver, images ImageStore, storage *store.File, opts ...Option) *Reconciler {
	r := &Reconciler{
		extractor: x,
		resolver:  resolver,
		images:    images,
		storage:   storage,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run carries the state of one Reconcile call.
type run struct {
	issue    Issue
	isUpdate bool
	state    State

	extraction *extractor.Extraction
	photoURL   string
	scratch    string

	collection places.Collection
	place      places.Place
	imageDir   string

	outcome Outcome
	trace   *agenttrace.Trace
}

// Reconcile processes issue and returns the published outcome. The error
// names the state the run failed in.
func (r *Reconciler) Reconcile(ctx context.Context, issue Issue) (_ *Outcome, err error) {
	ctx, trace := agenttrace.StartTrace(ctx)
	defer func() { trace.Complete(err) }()

	ru := &run{
		trace:    trace,
		issue:    issue,
		isUpdate: issueform.IsUpdateTitle(issue.Title),
		state:    Start,
	}
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("issue", issue.Number))
	defer func() {
		if ru.scratch != "" {
			imagestore.RemoveTemp(ctx, ru.scratch)
		}
	}()

	steps := []struct {
		state State
		run   func(context.Context, *run) error
		skip  func(*run) bool
	}{
		{state: Extracting, run: r.extract},
		{state: Reconciling, run: r.reconcile},
		{state: ImageResolving, run: r.resolveImage, skip: func(ru *run) bool { return ru.isUpdate || ru.place.HasImage() }},
		{state: Persisting, run: r.persist},
		{state: Publishing, run: r.publish},
	}

	for _, step := range steps {
		if step.skip != nil && step.skip(ru) {
			continue
		}
		if err := r.enter(ctx, ru, step.state, step.run); err != nil {
			return nil, err
		}
	}
	ru.state = Done

	out := &ru.outcome
	out.Place, out.IsUpdate = ru.place, ru.isUpdate
	clog.FromContext(ctx).With("place", out.Place.ID).With("branch", out.Branch).Info("Run complete")
	return out, nil
}

func (r *Reconciler) enter(ctx context.Context, ru *run, s State, fn func(context.Context, *run) error) error {
	clog.FromContext(ctx).With("from", ru.state).With("to", s).Info("Entering state")
	ru.state = s
	sctx, step := ru.trace.StartStep(ctx, string(s))
	err := fn(sctx, ru)
	step.Complete(err)
	if err != nil {
		ru.state = Failed
		return fmt.Errorf("%s: %w", s, err)
	}
	return nil
}

func (r *Reconciler) extract(ctx context.Context, ru *run) error {
	if !ru.issue.Screenshot {
		e, err := r.extractor.FromText(ctx, ru.issue.Title, ru.issue.Body, ru.isUpdate)
		ru.extraction = e
		return err
	}

	if ru.isUpdate {
		return extractor.ErrUnsupportedMode
	}

	urls := r.resolver.ResolveAll(ctx, ru.issue.Body)
	if len(urls) < 2 {
		return fmt.Errorf("%w, found %d image(s)", ErrMissingAttachments, len(urls))
	}
	if len(urls) > 2 {
		clog.FromContext(ctx).With("ignored", urls[2:]).Warn("Ignoring extra attachments")
	}
	ru.photoURL = urls[1]

	scratch, err := os.MkdirTemp("", "placebot-screenshot-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	ru.scratch = scratch

	shot, err := r.images.Download(ctx, urls[0], scratch, "screenshot")
	if err != nil {
		return err
	}
	e, err := r.extractor.FromScreenshot(ctx, shot, ru.issue.Body, false)
	ru.extraction = e
	return err
}

func (r *Reconciler) reconcile(ctx context.Context, ru *run) error {
	c, err := r.storage.Load()
	if err != nil {
		return err
	}
	ru.collection = c
	log := clog.FromContext(ctx).With("places", len(c))

	if u := ru.extraction.Update; u != nil {
		p, err := ru.collection.Apply(u.PlaceName, u.Updates)
		if err != nil {
			return err
		}
		ru.place = p
		log.With("place", p.ID).With("title", p.Title).Info("Updated place")
		return nil
	}

	p, err := ru.collection.Add(*ru.extraction.Draft)
	if err != nil {
		return err
	}
	ru.place = p
	log.With("place", p.ID).With("title", p.Title).Info("Added place")
	return nil
}

func (r *Reconciler) resolveImage(ctx context.Context, ru *run) error {
	url := ru.photoURL
	if !ru.issue.Screenshot {
		url = r.resolver.ResolveFirst(ctx, ru.issue.Body)
	}
	if url == "" {
		clog.FromContext(ctx).Info("No image attached, storing place without one")
		return nil
	}

	rel, err := r.images.SavePlaceImage(ctx, ru.place.ID, url)
	if err != nil {
		return err
	}
	if err := ru.collection.SetImage(ru.place.ID, rel); err != nil {
		return err
	}
	ru.place.Image = rel
	ru.imageDir = filepath.Join(r.images.Dir(), ru.place.ID)
	return nil
}

func (r *Reconciler) persist(_ context.Context, ru *run) error {
	return r.storage.Save(ru.collection)
}

var commitTemplate = template.Must(template.New("commit").Parse(
	`{{if .IsUpdate}}Update{{else}}Add{{end}} place: {{.Title}}

Submitted in #{{.Issue}}{{with .Login}} by @{{.}}{{end}}.
`))

func commitMessage(ru *run) (string, error) {
	var sb strings.Builder
	if err := commitTemplate.Execute(&sb, struct {
		IsUpdate bool
		Title    string
		Issue    int
		Login    string
	}{ru.isUpdate, ru.place.Title, ru.issue.Number, ru.issue.AuthorLogin}); err != nil {
		return "", fmt.Errorf("executing commit template: %w", err)
	}
	return sb.String(), nil
}

func (r *Reconciler) publish(ctx context.Context, ru *run) error {
	out := &ru.outcome
	msg, err := commitMessage(ru)
	if err != nil {
		return err
	}
	out.CommitMessage = msg
	out.Branch = gitpublisher.BranchName(ru.isUpdate, ru.place.ID, r.now())

	if r.publisher == nil {
		clog.FromContext(ctx).With("branch", out.Branch).Info("Dry run, not publishing")
		return nil
	}

	paths := []string{r.storage.Path}
	if ru.imageDir != "" {
		paths = append(paths, ru.imageDir)
	}
	hash, err := r.publisher.Publish(ctx, gitpublisher.Change{
		Branch:  out.Branch,
		Message: msg,
		Author:  gitpublisher.Contributor(ru.issue.AuthorLogin, ru.issue.AuthorName, ru.issue.AuthorEmail),
		Paths:   paths,
	})
	if err != nil {
		return err
	}
	out.Commit = hash
	return nil
}
