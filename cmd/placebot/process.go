/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"chainguard.dev/placebot/agents/agenttrace"
	"chainguard.dev/placebot/agents/executor/chatexecutor"
	"chainguard.dev/placebot/extractor"
	"chainguard.dev/placebot/issueform"
	"chainguard.dev/placebot/places/store"
	"chainguard.dev/placebot/reconcilers/placereconciler"
	"chainguard.dev/placebot/reconcilers/placereconciler/gitpublisher"
	"chainguard.dev/placebot/reconcilers/placereconciler/imagestore"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// outputConfig is read on its own so failures of the main config can still
// be reported.
type outputConfig struct {
	GitHubOutput string `env:"GITHUB_OUTPUT"`
}

type config struct {
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `env:"OPENROUTER_MODEL,default=google/gemini-2.5-flash"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL"`

	GitHubToken  string `env:"GITHUB_TOKEN,required"`
	GitHubAPIURL string `env:"GITHUB_API_URL,default=https://api.github.com/"`
	RepoOwner    string `env:"REPO_OWNER,required"`
	RepoName     string `env:"REPO_NAME,required"`

	IssueNumber      int    `env:"ISSUE_NUMBER,required"`
	IssueTitle       string `env:"ISSUE_TITLE,required"`
	IssueBody        string `env:"ISSUE_BODY"`
	IssueAuthor      string `env:"ISSUE_AUTHOR"`
	IssueAuthorName  string `env:"ISSUE_AUTHOR_NAME"`
	IssueAuthorEmail string `env:"ISSUE_AUTHOR_EMAIL"`
	UseScreenshot    bool   `env:"USE_SCREENSHOT,default=false"`

	Workspace string `env:"WORKSPACE,default=."`
	DataFile  string `env:"DATA_FILE,default=data/places.yaml"`
	ImagesDir string `env:"IMAGES_DIR,default=images"`
}

func (c config) keys() chatexecutor.Keys {
	return chatexecutor.Keys{
		OpenRouter:      c.OpenRouterAPIKey,
		OpenRouterModel: c.OpenRouterModel,
		OpenAI:          c.OpenAIAPIKey,
		OpenAIBaseURL:   c.OpenAIBaseURL,
		OpenAIModel:     c.OpenAIModel,
		Anthropic:       c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
		Gemini:          c.GeminiAPIKey,
		GeminiModel:     c.GeminiModel,
		Referer:         fmt.Sprintf("https://github.com/%s/%s", c.RepoOwner, c.RepoName),
		Title:           "placebot",
	}
}

// inWorkspace resolves path against the workspace unless it is absolute.
func (c config) inWorkspace(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Workspace, path)
}

func (c config) issue() placereconciler.Issue {
	return placereconciler.Issue{
		Number:      c.IssueNumber,
		Title:       c.IssueTitle,
		Body:        c.IssueBody,
		AuthorLogin: c.IssueAuthor,
		AuthorName:  c.IssueAuthorName,
		AuthorEmail: c.IssueAuthorEmail,
		Screenshot:  c.UseScreenshot,
	}
}

func newProcessCmd(env envconfig.Lookuper) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process the issue described by the environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd.Context(), env, cmd.OutOrStdout(), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "write the data file and image but skip commit and push")
	return cmd
}

// runProcess runs the pipeline for one issue and reports the result as
// step outputs. Every failure is reported before it is returned.
func runProcess(ctx context.Context, env envconfig.Lookuper, stdout io.Writer, dryRun bool) error {
	log := clog.FromContext(ctx)

	var oc outputConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &oc, Lookuper: env}); err != nil {
		return fmt.Errorf("processing output config: %w", err)
	}
	outputs := placereconciler.NewOutputs(oc.GitHubOutput, stdout)

	fail := func(err error) error {
		log.Errorf("Processing failed: %v", err)
		if werr := outputs.Failure(err); werr != nil {
			log.Errorf("Failed to write outputs: %v", werr)
		}
		return err
	}

	var cfg config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: env}); err != nil {
		return fail(fmt.Errorf("processing config: %w", err))
	}

	provider, err := chatexecutor.Select(ctx, cfg.keys())
	if err != nil {
		return fail(err)
	}

	rec, err := newReconciler(ctx, cfg, provider, dryRun)
	if err != nil {
		return fail(err)
	}

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository:  cfg.RepoOwner + "/" + cfg.RepoName,
		IssueNumber: cfg.IssueNumber,
		Screenshot:  cfg.UseScreenshot,
	})
	log.With("issue", cfg.IssueNumber).With("screenshot", cfg.UseScreenshot).Info("Processing issue")
	out, err := rec.Reconcile(ctx, cfg.issue())
	if err != nil {
		return fail(err)
	}
	return outputs.Success(out)
}

func newReconciler(ctx context.Context, cfg config, provider chatexecutor.Provider, dryRun bool) (*placereconciler.Reconciler, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})

	comments := issueform.NewGitHubComments(ctx, ts, cfg.RepoOwner, cfg.RepoName)
	base, err := url.Parse(strings.TrimSuffix(cfg.GitHubAPIURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing GITHUB_API_URL: %w", err)
	}
	comments.Client.BaseURL = base

	storage, err := store.Open(cfg.inWorkspace(cfg.DataFile))
	if err != nil {
		return nil, err
	}

	var opts []placereconciler.Option
	if !dryRun {
		opts = append(opts, placereconciler.WithPublisher(gitpublisher.New(cfg.Workspace, ts)))
	}

	return placereconciler.New(
		extractor.New(provider),
		issueform.Resolver{Comments: comments, Number: cfg.IssueNumber},
		imagestore.New(cfg.inWorkspace(cfg.ImagesDir), ts),
		storage,
		opts...,
	), nil
}
