// Package gitver models the semantic version reported by an installed git
// (or git-lfs) binary and the gating comparisons built on top of it.
//
// Versions are small immutable values. Range checks (AtLeast) treat a missing
// patch component as zero; the exact-match helper (Equal) requires all three
// components to agree, which is what point-release advisories need.
package gitver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionToken matches the first major.minor[.patch] token in a line of tool output.
var versionToken = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Version is the parsed version of an installed tool. The zero value means
// "undetermined"; callers must check the ok result of Parse before gating on it.
type Version struct {
	Major int
	Minor int
	Patch int

	// hasPatch records whether the source string carried a patch component.
	// It only affects Equal; ordering treats a missing patch as zero.
	hasPatch bool
}

// New constructs a fully specified three-component version.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, hasPatch: true}
}

// Parse extracts the first numeric version token from a line of tool output
// (e.g. "git version 2.30.1" or "git-lfs/2.7.1 (GitHub; linux amd64)") and
// parses it. The second result is false when no parsable token is present;
// parse failures never produce an error.
func Parse(line string) (Version, bool) {
	token := versionToken.FindString(line)
	if token == "" {
		return Version{}, false
	}
	parts := strings.Split(token, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}
	v := Version{Major: nums[0], Minor: nums[1]}
	if len(nums) == 3 {
		v.Patch = nums[2]
		v.hasPatch = true
	}
	return v, true
}

// String renders the version the way the tool reported it: the patch
// component is omitted when it was absent from the source string.
func (v Version) String() string {
	if v.hasPatch {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0, or +1 ordering v against o. A missing patch
// component compares as zero.
func (v Version) Compare(o Version) int {
	if c := cmp(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp(v.Patch, o.Patch)
}

// AtLeast reports whether v >= o under Compare ordering. All range-based
// flag gating goes through this.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// Equal reports exact equality of all three components. A two-component
// version never equals a three-component one with a non-zero patch; this is
// the comparison point-release advisories must use instead of range logic.
func (v Version) Equal(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
