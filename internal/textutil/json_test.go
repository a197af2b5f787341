package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject_EmbeddedInProse(t *testing.T) {
	got, ok := ExtractJSONObject(`Here is the analysis: {"company":{"name":"Acme"}} Let me know!`)
	require.True(t, ok)
	assert.Equal(t, `{"company":{"name":"Acme"}}`, got)
}

func TestExtractJSONObject_BracesInStrings(t *testing.T) {
	got, ok := ExtractJSONObject(`prefix {"pitch":"use {curly} braces \"}\"","n":1} suffix }`)
	require.True(t, ok)
	assert.Equal(t, `{"pitch":"use {curly} braces \"}\"","n":1}`, got)
}

func TestExtractJSONObject_FirstBalanced(t *testing.T) {
	got, ok := ExtractJSONObject(`{"a":1} and {"b":2}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, got)
}

func TestExtractJSONObject_Unbalanced(t *testing.T) {
	_, ok := ExtractJSONObject(`{"a": {"b": 1}`)
	assert.False(t, ok)

	_, ok = ExtractJSONObject("no json here")
	assert.False(t, ok)
}

func TestParseJSONObject_Direct(t *testing.T) {
	obj, ok := ParseJSONObject(` {"metadata":{"notes":"x"}} `)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"notes": "x"}, obj["metadata"])
}

func TestParseJSONObject_Fenced(t *testing.T) {
	obj, ok := ParseJSONObject("```json\n{\"company\":{\"name\":\"Notion\"}}\n```")
	require.True(t, ok)
	assert.Equal(t, "Notion", obj["company"].(map[string]any)["name"])
}

func TestParseJSONObject_SkipsInvalidCandidate(t *testing.T) {
	obj, ok := ParseJSONObject(`draft {not json} final {"ok":true}`)
	require.True(t, ok)
	assert.Equal(t, true, obj["ok"])
}

func TestParseJSONObject_NotJSON(t *testing.T) {
	_, ok := ParseJSONObject("I could not analyze this website.")
	assert.False(t, ok)

	_, ok = ParseJSONObject("null")
	assert.False(t, ok)
}
