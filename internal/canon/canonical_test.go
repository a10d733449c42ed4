package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", `"hello"`},
		{"true", true, `true`},
		{"false", false, `false`},
		{"int", 42, `42`},
		{"int64", int64(-7), `-7`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Marshal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}

func TestMarshal_SortsObjectKeys(t *testing.T) {
	out, err := Marshal(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(out))
}

func TestMarshal_NestedStructures(t *testing.T) {
	out, err := Marshal(map[string]any{
		"tags": map[string]any{
			"op":   "any",
			"tags": []string{"errand", "home"},
		},
		"completed": false,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"completed":false,"tags":{"op":"any","tags":["errand","home"]}}`, string(out))
}

func TestMarshal_ArrayOrderPreserved(t *testing.T) {
	out, err := Marshal([]any{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, `["b","a"]`, string(out))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	out, err := Marshal("<a href=\"x\">&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(out))
}

func TestMarshal_NFCNormalization(t *testing.T) {
	// e + combining acute vs precomposed é must serialize identically.
	decomposed := "Café"
	precomposed := "Café"

	a, err := Marshal(decomposed)
	require.NoError(t, err)
	b, err := Marshal(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshal_Forbidden(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)

	_, err = Marshal(3.14)
	require.Error(t, err)

	_, err = Marshal(map[string]any{"x": nil})
	require.Error(t, err)

	_, err = Marshal([]any{1.5})
	require.Error(t, err)

	_, err = Marshal(struct{}{})
	require.Error(t, err)
}

func TestKey_StableAcrossMapOrder(t *testing.T) {
	// Maps iterate in random order; the key must not care.
	paramsA := map[string]any{"completed": false, "search": "budget", "limit": 25}
	paramsB := map[string]any{"limit": 25, "search": "budget", "completed": false}

	keyA, err := Key("tasks:query", paramsA)
	require.NoError(t, err)
	keyB, err := Key("tasks:query", paramsB)
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)
}

func TestKey_Shape(t *testing.T) {
	key, err := Key("tasks:count", map[string]any{"flagged": true})
	require.NoError(t, err)

	// Operation stays a readable prefix; the hash is fixed-width hex.
	assert.Regexp(t, `^tasks:count:[0-9a-f]{64}$`, key)
}

func TestKey_DistinctParams(t *testing.T) {
	keyA, err := Key("tasks:query", map[string]any{"flagged": true})
	require.NoError(t, err)
	keyB, err := Key("tasks:query", map[string]any{"flagged": false})
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyB)
}
