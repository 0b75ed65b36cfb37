package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bcmimarlik/site/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	assert.IsType(t, &GeminiProvider{}, llm.GetProvider("gemini"))
	assert.IsType(t, &OpenAIProvider{}, llm.GetProvider("openai"))
	assert.ElementsMatch(t, []string{"gemini", "openai"}, llm.ListProviders())
}

func TestGeminiProvider(t *testing.T) {
	g := &GeminiProvider{}

	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent", g.BuildURL("", "gemini-2.0-flash"))
	assert.Equal(t, "http://local/models/m:generateContent", g.BuildURL("http://local/", "m"))

	body, err := g.BuildRequestBody("m", "merhaba")
	require.NoError(t, err)
	assert.JSONEq(t, `{"contents":[{"role":"user","parts":[{"text":"merhaba"}]}]}`, string(body))

	text, err := g.ParseResponse([]byte(`{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "ab", text)

	_, err = g.ParseResponse([]byte(`{"candidates":[]}`))
	assert.Error(t, err)

	req, _ := http.NewRequest(http.MethodPost, "http://x", nil)
	g.SetHeaders(req, "k")
	assert.Equal(t, "k", req.Header.Get("x-goog-api-key"))
}

func TestOpenAIProvider(t *testing.T) {
	o := &OpenAIProvider{}

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", o.BuildURL("", "gpt"))
	assert.Equal(t, "http://or/api/v1/chat/completions", o.BuildURL("http://or/api/v1/chat/completions", "gpt"))

	body, err := o.BuildRequestBody("gpt-4o-mini", "merhaba")
	require.NoError(t, err)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "gpt-4o-mini", sent["model"])
	assert.Len(t, sent["messages"], 1)

	text, err := o.ParseResponse([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"yanıt"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "yanıt", text)

	_, err = o.ParseResponse([]byte(`{"choices":[]}`))
	assert.Error(t, err)

	req, _ := http.NewRequest(http.MethodPost, "http://x", nil)
	o.SetHeaders(req, "k")
	assert.Equal(t, "Bearer k", req.Header.Get("Authorization"))
}
