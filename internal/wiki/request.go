// Package wiki is the client for the DeepWiki knowledge API. It owns the
// mapping from tool invocations onto the upstream request schema, the
// single streaming HTTP call per invocation, and the error taxonomy that
// keeps raw transport failures from crossing into the tool layer.
package wiki

import "strings"

// DeepResearchMarker is prepended to the user's query when deep research is
// requested without an explicit conversation history. The upstream service
// recognizes the marker and engages its heavier multi-pass analysis mode.
const DeepResearchMarker = "[DEEP RESEARCH] "

const (
	defaultRepoType = "github"
	defaultLanguage = "en"
)

// Message is one turn of a conversation, role "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Invocation is a single decoded tool call: what the caller wants asked,
// about which repository, and how. All fields beyond Repository and Query
// are optional.
type Invocation struct {
	Repository    string
	Query         string
	Messages      []Message
	FilePath      string
	RepoType      string
	Language      string
	Provider      string
	Model         string
	AccessToken   string
	ExcludedDirs  string
	ExcludedFiles string
	DeepResearch  bool
}

// Validate rejects invocations that must not reach the upstream. It is
// called before any outbound request is built.
func (inv *Invocation) Validate() error {
	if strings.TrimSpace(inv.Repository) == "" {
		return &ValidationError{Field: "repository", Reason: "repository URL or identifier is required"}
	}
	if strings.TrimSpace(inv.Query) == "" {
		return &ValidationError{Field: "query", Reason: "query text is required"}
	}
	return nil
}

// ChatRequest is the upstream schema projection of an Invocation: the JSON
// body of POST /chat/completions/stream. Optional fields use omitempty so
// the upstream applies its own defaults to absent values rather than
// seeing empty strings.
type ChatRequest struct {
	RepoURL       string    `json:"repo_url"`
	Type          string    `json:"type"`
	Language      string    `json:"language"`
	Messages      []Message `json:"messages"`
	FilePath      string    `json:"filePath,omitempty"`
	Token         string    `json:"token,omitempty"`
	Provider      string    `json:"provider,omitempty"`
	Model         string    `json:"model,omitempty"`
	ExcludedDirs  string    `json:"excluded_dirs,omitempty"`
	ExcludedFiles string    `json:"excluded_files,omitempty"`
}

// BuildChatRequest maps an Invocation onto the upstream schema. It is pure
// and deterministic and never mutates its input.
//
// When the caller supplies a conversation history it is passed through
// unchanged; the deep-research marker is never injected retroactively.
// Otherwise a single user message is synthesized from the query, with the
// marker prefixed when deep research was requested.
func BuildChatRequest(inv *Invocation) ChatRequest {
	var messages []Message
	if len(inv.Messages) > 0 {
		messages = make([]Message, len(inv.Messages))
		copy(messages, inv.Messages)
	} else {
		content := inv.Query
		if inv.DeepResearch {
			content = DeepResearchMarker + inv.Query
		}
		messages = []Message{{Role: "user", Content: content}}
	}

	repoType := inv.RepoType
	if repoType == "" {
		repoType = defaultRepoType
	}
	language := inv.Language
	if language == "" {
		language = defaultLanguage
	}

	return ChatRequest{
		RepoURL:       inv.Repository,
		Type:          repoType,
		Language:      language,
		Messages:      messages,
		FilePath:      inv.FilePath,
		Token:         inv.AccessToken,
		Provider:      inv.Provider,
		Model:         inv.Model,
		ExcludedDirs:  inv.ExcludedDirs,
		ExcludedFiles: inv.ExcludedFiles,
	}
}
