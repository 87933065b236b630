package entities

import (
	"path"
	"strings"
)

// PublishInput is everything the commit publisher needs for one run.
// Content is the complete desired file, not a patch.
type PublishInput struct {
	Repository RepositoryRef
	Branch     string // empty means the repository's default branch
	Path       string
	Content    []byte
	Message    string
	DryRun     bool
}

// PublishResult describes the outcome of a publish.
type PublishResult struct {
	Repository RepositoryRef
	Branch     string
	Path       string
	BaseSHA    string // tip read before the update, parent of the new commit
	TreeSHA    string
	CommitSHA  string // empty on dry runs
	DryRun     bool
}

// NormalizeRepoPath converts a local path into the repository's path convention:
// forward slashes, no leading "./" or "/".
func NormalizeRepoPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}
