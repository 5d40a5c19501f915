// Package gitcli drives an externally installed git binary (and its LFS
// extension) on behalf of an automated build worker.
//
// This package handles:
//   - One-time session load: tool path resolution, version probing, and
//     minimum/recommended version enforcement
//   - Version-gated command construction (flags legal for the installed git)
//   - Subprocess execution with stream or collect capture modes
//   - Bounded retry with jittered backoff for network-bound operations
//   - Structured extraction of single values (version, config URL) from
//     captured output
//
// A Session is built once per repository-operation lifetime and is read-only
// afterwards, so concurrent operation calls may share it freely. The package
// never interprets a non-zero exit code as a Go error; callers receive the
// code and decide.
package gitcli
