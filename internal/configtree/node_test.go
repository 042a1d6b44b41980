package configtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"llm":{"provider":"openai","api_key":"sk-1","model":"gpt-4o","max_tokens":2048},"qq":{"enabled":false,"ws_url":"ws://127.0.0.1:3001"},"discord":{"enabled":true,"token":""},"admins":["alice","bob"],"note":null}`

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	n, err := ParseJSON([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"llm", "qq", "discord", "admins", "note"}, n.Keys())

	out, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, sample, string(out))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestLookupAndSetPath(t *testing.T) {
	n, err := ParseJSON([]byte(sample))
	require.NoError(t, err)

	v, ok := n.Lookup("llm", "max_tokens")
	require.True(t, ok)
	assert.Equal(t, Number, v.Kind())
	assert.Equal(t, "2048", v.Number().String())

	require.NoError(t, n.SetPath(NewBool(true), SplitPath("qq.enabled")...))
	v, _ = n.Lookup("qq", "enabled")
	assert.True(t, v.Bool())
	assert.Equal(t, []string{"enabled", "ws_url"}, mustGet(t, n, "qq").Keys(), "existing key keeps its position")

	require.NoError(t, n.SetPath(NewString("x"), "telegram", "token"))
	v, ok = n.Lookup("telegram", "token")
	require.True(t, ok)
	assert.Equal(t, "x", v.Str())

	err = n.SetPath(NewString("x"), "llm", "provider", "nested")
	assert.ErrorContains(t, err, "llm.provider is a string")
}

func mustGet(t *testing.T, n *Node, key string) *Node {
	t.Helper()
	v, ok := n.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}

func TestWalkVisitsLeavesInOrder(t *testing.T) {
	n, err := ParseJSON([]byte(sample))
	require.NoError(t, err)

	var paths []string
	require.NoError(t, n.Walk(func(path []string, _ *Node) error {
		paths = append(paths, strings.Join(path, "."))
		return nil
	}))
	assert.Equal(t, []string{
		"llm.provider", "llm.api_key", "llm.model", "llm.max_tokens",
		"qq.enabled", "qq.ws_url",
		"discord.enabled", "discord.token",
		"admins", "note",
	}, paths)
}

func TestCloneIsDeep(t *testing.T) {
	n, err := ParseJSON([]byte(sample))
	require.NoError(t, err)

	c := n.Clone()
	require.True(t, n.Equal(c))

	require.NoError(t, c.SetPath(NewString("anthropic"), "llm", "provider"))
	v, _ := n.Lookup("llm", "provider")
	assert.Equal(t, "openai", v.Str())
	assert.False(t, n.Equal(c))
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a, _ := ParseJSON([]byte(`{"a":1,"b":[true,null]}`))
	b, _ := ParseJSON([]byte(`{"b":[true,null],"a":1}`))
	c, _ := ParseJSON([]byte(`{"a":1,"b":[true]}`))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestParseScalar(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		show string
	}{
		{"true", Bool, "true"},
		{"42", Number, "42"},
		{"1.5", Number, "1.5"},
		{"null", Null, "null"},
		{`"42"`, String, "42"},
		{"gpt-4o", String, "gpt-4o"},
		{"123abc", String, "123abc"},
		{"", String, ""},
		{`["a"]`, Array, `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n := ParseScalar(tt.in)
			assert.Equal(t, tt.kind, n.Kind())
			assert.Equal(t, tt.show, n.Display())
		})
	}
}

func TestMaskHidesSecrets(t *testing.T) {
	n, err := ParseJSON([]byte(sample))
	require.NoError(t, err)

	masked := n.Mask("****")
	v, _ := masked.Lookup("llm", "api_key")
	assert.Equal(t, "****", v.Str())
	v, _ = masked.Lookup("discord", "token")
	assert.Equal(t, "", v.Str(), "empty secrets stay empty")
	v, _ = masked.Lookup("llm", "model")
	assert.Equal(t, "gpt-4o", v.Str())

	orig, _ := n.Lookup("llm", "api_key")
	assert.Equal(t, "sk-1", orig.Str())
}

func TestIsSecretKey(t *testing.T) {
	for key, want := range map[string]bool{
		"api_key": true, "Token": true, "client_secret": true, "password": true,
		"model": false, "ws_url": false, "enabled": false,
	} {
		assert.Equal(t, want, IsSecretKey(key), key)
	}
}

func TestSetOnNonObject(t *testing.T) {
	assert.Error(t, NewString("x").Set("k", NewNull()))
	_, ok := NewArray().Get("k")
	assert.False(t, ok)
}
