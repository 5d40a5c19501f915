package gitcli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitdriver/internal/gitver"
)

func TestSingleNonEmptyLine(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  string
		ok    bool
	}{
		{"one line", []string{"hello"}, "hello", true},
		{"blanks discarded", []string{"", "  ", "hello", ""}, "hello", true},
		{"empty output", nil, "", false},
		{"all blank", []string{"", "  "}, "", false},
		{"two lines", []string{"a", "b"}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := singleNonEmptyLine(tc.lines)
			require.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractVersion(t *testing.T) {
	v, ok := extractVersion([]string{"", "git version 2.30.1"})
	require.True(t, ok)
	assert.Equal(t, gitver.New(2, 30, 1), v)

	_, ok = extractVersion(nil)
	assert.False(t, ok)

	_, ok = extractVersion([]string{"git version 2.30.1", "warning: something"})
	assert.False(t, ok)

	_, ok = extractVersion([]string{"no numbers here"})
	assert.False(t, ok)

	_, ok = extractVersion([]string{"abc.def"})
	assert.False(t, ok)
}

func TestExtractURL(t *testing.T) {
	u, ok := extractURL([]string{"https://example.com/org/repo.git"})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/org/repo.git", u)

	// scp-style remotes are not absolute URIs.
	_, ok = extractURL([]string{"git@example.com:org/repo.git"})
	assert.False(t, ok)

	_, ok = extractURL([]string{"../relative/path"})
	assert.False(t, ok)

	_, ok = extractURL(nil)
	assert.False(t, ok)

	_, ok = extractURL([]string{"https://a.example", "https://b.example"})
	assert.False(t, ok)
}
