package omnijs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeString(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", `"hello"`},
		{"empty", "", `""`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"backspace and formfeed", "a\b\fb", `"a\b\fb"`},
		{"control char", "a\x01b", `"ab"`},
		{"line separator", "a b", `"a b"`},
		{"paragraph separator", "a b", `"a b"`},
		{"unicode passthrough", "héllo wörld", `"héllo wörld"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EncodeString(tc.in))
		})
	}
}

// Every encoded literal must also be valid JSON, since the same encoder
// escapes the inner script for the bridge call and JXA string literals
// are a superset of JSON strings.
func TestEncodeString_RoundTripsAsJSON(t *testing.T) {
	inputs := []string{
		"plain",
		`"); evil("`,
		"multi\nline\r\n",
		"tab\tand\x00nul",
		"sep  end",
		`back\slash "quoted"`,
	}

	for _, in := range inputs {
		encoded := EncodeString(in)
		var decoded string
		require.NoError(t, json.Unmarshal([]byte(encoded), &decoded), "literal: %s", encoded)
		assert.Equal(t, in, decoded)
	}
}

func TestEncodeStringList(t *testing.T) {
	assert.Equal(t, `[]`, EncodeStringList(nil))
	assert.Equal(t, `["a"]`, EncodeStringList([]string{"a"}))
	assert.Equal(t, `["a", "b\"c"]`, EncodeStringList([]string{"a", `b"c`}))
}

func TestEncodeDate(t *testing.T) {
	utc := time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, `new Date("2025-11-09T00:00:00.000Z")`, EncodeDate(utc))

	// Non-UTC inputs normalize to UTC.
	loc := time.FixedZone("plus2", 2*60*60)
	local := time.Date(2025, time.November, 9, 2, 30, 0, 0, loc)
	assert.Equal(t, `new Date("2025-11-09T00:30:00.000Z")`, EncodeDate(local))
}
