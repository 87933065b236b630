package repositories

import (
	"context"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
)

// ObjectGraphRepository abstracts the low-level git object endpoints of a
// hosting provider. Every method is a single blocking request.
type ObjectGraphRepository interface {
	// DefaultBranch returns the repository's configured default branch name.
	DefaultBranch(ctx context.Context, repo entities.RepositoryRef) (string, error)

	// BranchTip returns the commit currently referenced by heads/<branch>.
	BranchTip(ctx context.Context, repo entities.RepositoryRef, branch string) (*entities.BranchState, error)

	// CreateTree creates a tree equal to baseTree except for the given entries.
	CreateTree(
		ctx context.Context,
		repo entities.RepositoryRef,
		baseTree string,
		entries []entities.TreeEntry,
	) (*entities.TreeObject, error)

	// CreateCommit creates an unreferenced commit object.
	CreateCommit(
		ctx context.Context,
		repo entities.RepositoryRef,
		message, tree string,
		parents []string,
	) (*entities.CommitObject, error)

	// UpdateReference moves a reference to sha. It must fail with
	// entities.ErrConflict unless the update is a fast-forward.
	UpdateReference(
		ctx context.Context,
		repo entities.RepositoryRef,
		ref, sha string,
	) (*entities.Reference, error)
}

// ObjectGraphFactory builds an authenticated ObjectGraphRepository from settings.
// Building it must not issue any network request.
type ObjectGraphFactory func(settings *entities.Settings) (ObjectGraphRepository, error)
