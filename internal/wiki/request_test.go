package wiki

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := map[string]Invocation{
		"empty repository":      {Query: "what is this"},
		"whitespace repository": {Repository: "   ", Query: "what is this"},
		"empty query":           {Repository: "octo/demo"},
		"whitespace query":      {Repository: "octo/demo", Query: "\n\t"},
	}
	for name, inv := range tests {
		t.Run(name, func(t *testing.T) {
			err := inv.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Field)
			assert.NotEmpty(t, verr.Reason)
		})
	}
}

func TestValidateAcceptsMinimalInvocation(t *testing.T) {
	inv := Invocation{Repository: "https://github.com/octo/demo", Query: "how does auth work"}
	assert.NoError(t, inv.Validate())
}

func TestBuildChatRequestSynthesizesUserMessage(t *testing.T) {
	inv := Invocation{Repository: "octo/demo", Query: "What does module X do?"}
	req := BuildChatRequest(&inv)

	assert.Equal(t, []Message{{Role: "user", Content: "What does module X do?"}}, req.Messages)
}

func TestBuildChatRequestDeepResearchMarker(t *testing.T) {
	inv := Invocation{Repository: "octo/demo", Query: "What does module X do?", DeepResearch: true}
	req := BuildChatRequest(&inv)

	assert.Equal(t, []Message{{Role: "user", Content: "[DEEP RESEARCH] What does module X do?"}}, req.Messages)
}

func TestBuildChatRequestHistoryPassthrough(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "follow-up"},
	}
	inv := Invocation{Repository: "octo/demo", Query: "ignored", Messages: history, DeepResearch: true}
	req := BuildChatRequest(&inv)

	// The marker is never injected retroactively into supplied history.
	assert.Equal(t, history, req.Messages)

	req.Messages[0].Content = "mutated"
	assert.Equal(t, "first question", history[0].Content, "input history must not alias the request")
}

func TestBuildChatRequestDefaults(t *testing.T) {
	req := BuildChatRequest(&Invocation{Repository: "octo/demo", Query: "q"})
	assert.Equal(t, "github", req.Type)
	assert.Equal(t, "en", req.Language)

	req = BuildChatRequest(&Invocation{Repository: "octo/demo", Query: "q", RepoType: "gitlab", Language: "ja"})
	assert.Equal(t, "gitlab", req.Type)
	assert.Equal(t, "ja", req.Language)
}

func TestBuildChatRequestDeterministic(t *testing.T) {
	inv := Invocation{
		Repository:   "octo/demo",
		Query:        "explain the scheduler",
		FilePath:     "internal/sched/loop.go",
		Provider:     "google",
		Model:        "gemini-2.0-flash",
		DeepResearch: true,
	}

	first, err := json.Marshal(BuildChatRequest(&inv))
	require.NoError(t, err)
	second, err := json.Marshal(BuildChatRequest(&inv))
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical invocations must serialize identically")
}

func TestChatRequestOmitsUnsetOptionals(t *testing.T) {
	raw, err := json.Marshal(BuildChatRequest(&Invocation{Repository: "octo/demo", Query: "q"}))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	for _, key := range []string{"filePath", "token", "provider", "model", "excluded_dirs", "excluded_files"} {
		assert.NotContains(t, payload, key)
	}
	for _, key := range []string{"repo_url", "type", "language", "messages"} {
		assert.Contains(t, payload, key)
	}
}

func TestChatRequestCarriesOptionalFields(t *testing.T) {
	inv := Invocation{
		Repository:    "https://gitlab.com/octo/demo",
		Query:         "q",
		FilePath:      "src/main.rs",
		AccessToken:   "glpat-secret",
		ExcludedDirs:  "./vendor,./dist",
		ExcludedFiles: "*.lock",
	}
	raw, err := json.Marshal(BuildChatRequest(&inv))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "src/main.rs", payload["filePath"])
	assert.Equal(t, "glpat-secret", payload["token"])
	assert.Equal(t, "./vendor,./dist", payload["excluded_dirs"])
	assert.Equal(t, "*.lock", payload["excluded_files"])
}
