package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDateOnly(t *testing.T) {
	require.Equal(t, "2024-01-01", DateOnly("2024-01-01T10:11:12.000Z"))
	require.Equal(t, "2024-01-01", DateOnly("2024-01-01"))
	require.Equal(t, "", DateOnly(""))
	require.Equal(t, "2024", DateOnly("2024"))
}

func TestCleanText(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "plain", data: []byte("  hello\n"), expected: "hello"},
		{name: "bom and spaces", data: []byte("\ufeffhi there \r\n"), expected: "\ufeffhi there"},
		{name: "invalid bytes dropped", data: []byte{'a', 0xff, 0xfe, 'b'}, expected: "ab"},
		{name: "only whitespace", data: []byte(" \t\n "), expected: ""},
		{name: "multibyte kept", data: []byte(" Привет "), expected: "Привет"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, CleanText(tc.data))
		})
	}
}

func TestCharCount(t *testing.T) {
	require.Equal(t, 6, CharCount("Привет"))
	require.Equal(t, 0, CharCount(""))
}

func TestJoinLabel(t *testing.T) {
	require.Equal(t, "Sub", JoinLabel("", "Sub"))
	require.Equal(t, "Root/Sub", JoinLabel("Root", "Sub"))
}

func TestGetIDFromString(t *testing.T) {
	s := "Sub/Deeper"
	id := GetIDFromString(&s)
	require.Len(t, id, 40)
	require.Equal(t, id, GetIDFromString(&s))
}
