package gitcli

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/gitdriver/internal/gitver"
)

// singleNonEmptyLine applies the shared extraction rule: blank lines are
// discarded and exactly one line must remain. Zero or multiple candidates is
// extraction ambiguity, resolved as "undetermined" rather than an error.
func singleNonEmptyLine(lines []string) (string, bool) {
	var found string
	count := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		found = l
		count++
		if count > 1 {
			return "", false
		}
	}
	if count != 1 {
		return "", false
	}
	return found, true
}

// extractVersion pulls a version out of collected probe output.
func extractVersion(lines []string) (gitver.Version, bool) {
	line, ok := singleNonEmptyLine(lines)
	if !ok {
		return gitver.Version{}, false
	}
	return gitver.Parse(line)
}

// extractURL validates collected config output as a single absolute URL.
// Relative or malformed values yield undetermined, never a parse error.
func extractURL(lines []string) (string, bool) {
	line, ok := singleNonEmptyLine(lines)
	if !ok {
		return "", false
	}
	raw := strings.TrimSpace(line)
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	return raw, true
}
