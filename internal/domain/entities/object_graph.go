package entities

import "strings"

const (
	// RegularFileMode is the git mode of a regular, non-executable file.
	RegularFileMode = "100644"
	// BlobType is the git object type of file contents.
	BlobType = "blob"

	headsPrefix = "heads/"
)

// RepositoryRef identifies a repository on the hosting provider.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// BranchState is the tip of a branch as read at the start of a publish.
type BranchState struct {
	Branch string
	SHA    string
}

// TreeEntry is the desired state of a single file.
type TreeEntry struct {
	Path    string
	Mode    string
	Type    string
	Content string
}

// TreeObject is a directory snapshot created by the provider.
// Entries maps the top-level paths the provider reported to their object SHAs.
type TreeObject struct {
	SHA      string
	BaseTree string
	Entries  map[string]string
}

// CommitObject is a commit created by the provider.
type CommitObject struct {
	SHA     string
	Message string
	Tree    string
	Parents []string
}

// Reference is a mutable pointer to a commit.
type Reference struct {
	Name string // e.g. "heads/main"
	SHA  string
}

// BranchRef returns the reference name for a branch, e.g. "heads/main".
// Leading "refs/" and "heads/" are accepted and normalised away, so a branch
// whose own name starts with "heads/" or "refs/" must be given fully
// qualified: "refs/heads/heads/foo" targets the branch "heads/foo".
func BranchRef(branch string) string {
	branch = strings.TrimPrefix(branch, "refs/")
	branch = strings.TrimPrefix(branch, headsPrefix)
	return headsPrefix + branch
}
