package gitcli

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/gitdriver/internal/gitver"
)

// Version thresholds for gated flags. Each guards exactly one table row.
var (
	gitVersionFetchForce       = gitver.New(2, 20, 0)
	gitVersionFetchPruneTags   = gitver.New(2, 17, 0)
	gitVersionCheckoutProgress = gitver.New(2, 7, 0)
	gitVersionCleanDoubleForce = gitver.New(2, 4, 0)
)

// policyInput is everything a flag rule may consult: the installed version
// and the per-call parameters.
type policyInput struct {
	version      gitver.Version
	versionKnown bool

	depth             int
	shallowMarker     bool
	pruneTagsDisabled bool
	progressDisabled  bool
}

// atLeast gates on the installed version; an undetermined version never
// satisfies a threshold, so only default-safe arguments are emitted.
func (in policyInput) atLeast(v gitver.Version) bool {
	return in.versionKnown && in.version.AtLeast(v)
}

// flagRule is one row of the gating table: a named, independently evaluated
// decision that contributes zero or more arguments to one operation.
type flagRule struct {
	operation string
	name      string
	args      func(in policyInput) []string
}

// flagRules is the full decision table. Rows are evaluated independently and
// in order; adding support for a new git threshold means adding a row, not
// editing branch logic.
var flagRules = []flagRule{
	{
		operation: "fetch",
		name:      "force-tag-update",
		// Tag update behavior changed in git 2.20; older versions force by default.
		args: func(in policyInput) []string {
			if in.atLeast(gitVersionFetchForce) {
				return []string{"--force"}
			}
			return nil
		},
	},
	{
		operation: "fetch",
		name:      "prune-tags",
		args: func(in policyInput) []string {
			if in.atLeast(gitVersionFetchPruneTags) && !in.pruneTagsDisabled {
				return []string{"--prune-tags"}
			}
			return nil
		},
	},
	{
		operation: "fetch",
		name:      "progress",
		// Purely cosmetic; never changes exit semantics.
		args: func(in policyInput) []string {
			if !in.progressDisabled {
				return []string{"--progress"}
			}
			return nil
		},
	},
	{
		operation: "fetch",
		name:      "depth",
		args: func(in policyInput) []string {
			switch {
			case in.depth > 0:
				return []string{fmt.Sprintf("--depth=%d", in.depth)}
			case in.shallowMarker:
				// The caller stopped requesting a bound; convert the existing
				// shallow clone back to full history.
				return []string{"--unshallow"}
			default:
				return nil
			}
		},
	},
	{
		operation: "checkout",
		name:      "progress",
		// Older versions cannot report progress to a redirected stderr.
		args: func(in policyInput) []string {
			if in.atLeast(gitVersionCheckoutProgress) {
				return []string{"--progress"}
			}
			return nil
		},
	},
	{
		operation: "clean",
		name:      "force",
		args: func(in policyInput) []string {
			if in.atLeast(gitVersionCleanDoubleForce) {
				return []string{"-ffdx"}
			}
			return []string{"-fdx"}
		},
	},
}

// argsFor evaluates every table row for the given operation. No row
// short-circuits another.
func argsFor(operation string, in policyInput) []string {
	var out []string
	for _, rule := range flagRules {
		if rule.operation != operation {
			continue
		}
		out = append(out, rule.args(in)...)
	}
	return out
}

// hasShallowMarker reports whether the repository at dir is a shallow clone,
// by the presence of the marker file under the repository metadata directory.
func hasShallowMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git", "shallow"))
	return err == nil
}

func (s *Session) policyInput(depth int, shallowMarker bool) policyInput {
	return policyInput{
		version:           s.gitVersion,
		versionKnown:      s.gitVersionOK,
		depth:             depth,
		shallowMarker:     shallowMarker,
		pruneTagsDisabled: s.disablePruneTags,
		progressDisabled:  s.quiet,
	}
}
