package tools

import (
	"context"
	"encoding/json"

	"github.com/deepwiki-go/mcpbridge/internal/stream"
	"github.com/deepwiki-go/mcpbridge/internal/wiki"
)

// AskArgs are the arguments of ask_deepwiki, the simple question tool.
type AskArgs struct {
	Repository   string `json:"repository" jsonschema:"minLength=1" jsonschema_description:"Repository URL or owner/name identifier to ask about"`
	Query        string `json:"query" jsonschema:"minLength=1" jsonschema_description:"Natural-language question about the repository"`
	RepoType     string `json:"repo_type,omitempty" jsonschema:"enum=github,enum=gitlab,enum=bitbucket" jsonschema_description:"Hosting platform of the repository. Defaults to github"`
	Language     string `json:"language,omitempty" jsonschema_description:"ISO 639-1 code for the answer language. Defaults to en"`
	DeepResearch bool   `json:"deep_research,omitempty" jsonschema_description:"Engage the slower multi-pass research mode for architecture-level questions"`
}

// QueryArgs are the arguments of query_repository, the full-surface tool.
// It exposes every knob of the upstream chat schema including multi-turn
// history and private repository access.
type QueryArgs struct {
	Repository    string         `json:"repository" jsonschema:"minLength=1" jsonschema_description:"Repository URL or owner/name identifier to query"`
	Query         string         `json:"query" jsonschema:"minLength=1" jsonschema_description:"Question to ask. Ignored when messages carries an explicit conversation"`
	Messages      []wiki.Message `json:"messages,omitempty" jsonschema_description:"Optional prior conversation turns, passed through to the model unchanged"`
	FilePath      string         `json:"file_path,omitempty" jsonschema_description:"Focus the question on one file within the repository"`
	RepoType      string         `json:"repo_type,omitempty" jsonschema:"enum=github,enum=gitlab,enum=bitbucket" jsonschema_description:"Hosting platform of the repository. Defaults to github"`
	Language      string         `json:"language,omitempty" jsonschema_description:"ISO 639-1 code for the answer language. Defaults to en"`
	Provider      string         `json:"provider,omitempty" jsonschema_description:"Model provider override, for example google or openai"`
	Model         string         `json:"model,omitempty" jsonschema_description:"Model identifier override within the chosen provider"`
	Token         string         `json:"token,omitempty" jsonschema_description:"Personal access token for private repositories"`
	ExcludedDirs  string         `json:"excluded_dirs,omitempty" jsonschema_description:"Comma-separated directory paths to exclude from analysis"`
	ExcludedFiles string         `json:"excluded_files,omitempty" jsonschema_description:"Comma-separated file patterns to exclude from analysis"`
	DeepResearch  bool           `json:"deep_research,omitempty" jsonschema_description:"Engage the slower multi-pass research mode"`
}

// NewAskTool builds ask_deepwiki bound to the given upstream client.
func NewAskTool(client *wiki.Client) (*Tool, error) {
	return New("ask_deepwiki",
		"Ask a question about a public code repository and get an answer grounded in its generated wiki.",
		func(ctx context.Context, args AskArgs, sink stream.Sink) (string, error) {
			inv := &wiki.Invocation{
				Repository:   args.Repository,
				Query:        args.Query,
				RepoType:     args.RepoType,
				Language:     args.Language,
				DeepResearch: args.DeepResearch,
			}
			return askOrRelay(ctx, client, inv, sink)
		})
}

// NewQueryTool builds query_repository bound to the given upstream client.
func NewQueryTool(client *wiki.Client) (*Tool, error) {
	return New("query_repository",
		"Query a code repository with full control: conversation history, file focus, provider and model overrides, and private repository access.",
		func(ctx context.Context, args QueryArgs, sink stream.Sink) (string, error) {
			inv := &wiki.Invocation{
				Repository:    args.Repository,
				Query:         args.Query,
				Messages:      args.Messages,
				FilePath:      args.FilePath,
				RepoType:      args.RepoType,
				Language:      args.Language,
				Provider:      args.Provider,
				Model:         args.Model,
				AccessToken:   args.Token,
				ExcludedDirs:  args.ExcludedDirs,
				ExcludedFiles: args.ExcludedFiles,
				DeepResearch:  args.DeepResearch,
			}
			return askOrRelay(ctx, client, inv, sink)
		})
}

// NewHealthTool builds health_check. The probe result is the tool result,
// not an error: an unreachable upstream is a valid answer to the question
// being asked.
func NewHealthTool(client *wiki.Client) (*Tool, error) {
	return New("health_check",
		"Check whether the DeepWiki API behind this gateway is reachable and serving.",
		func(ctx context.Context, _ struct{}, _ stream.Sink) (string, error) {
			status, err := client.Health(ctx)
			payload := map[string]string{
				"status":       string(status),
				"deepwiki_api": client.BaseURL(),
			}
			if err != nil {
				payload["error"] = err.Error()
			}
			raw, merr := json.Marshal(payload)
			if merr != nil {
				return "", merr
			}
			return string(raw), nil
		})
}

// RegisterDeepWiki registers the full tool surface on r.
func RegisterDeepWiki(r *Registry, client *wiki.Client) error {
	for _, build := range []func(*wiki.Client) (*Tool, error){NewAskTool, NewQueryTool, NewHealthTool} {
		t, err := build(client)
		if err != nil {
			return err
		}
		r.Register(t)
	}
	return nil
}

func askOrRelay(ctx context.Context, client *wiki.Client, inv *wiki.Invocation, sink stream.Sink) (string, error) {
	if sink != nil {
		return "", client.AskStream(ctx, inv, sink)
	}
	return client.Ask(ctx, inv)
}
