//go:build integration || unit || test

// Package repositorydoubles holds hand-written spies and stubs for the
// object-graph and file repositories.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// SpyObjectGraphRepository implements repositories.ObjectGraphRepository as a configurable spy.
type SpyObjectGraphRepository struct {
	// Calls records method names in invocation order.
	Calls []string

	// --- DefaultBranch ---
	DefaultBranchName string
	DefaultBranchErr  error

	// --- BranchTip ---
	TipSHA       string
	BranchTipErr error
	TipBranches  []string
	// BlockTip makes BranchTip wait until ctx is done and return ctx.Err().
	BlockTip bool

	// --- CreateTree ---
	TreeSHA       string
	TreeEntries   map[string]string
	CreateTreeErr error
	BaseTrees     []string
	TreeInputs    [][]entities.TreeEntry

	// --- CreateCommit ---
	CommitSHA       string
	CreateCommitErr error
	CommitMessages  []string
	CommitTrees     []string
	CommitParents   [][]string

	// --- UpdateReference ---
	UpdateRefErr error
	UpdatedRefs  []string
	UpdatedSHAs  []string
}

var _ repositories.ObjectGraphRepository = (*SpyObjectGraphRepository)(nil)

func (p *SpyObjectGraphRepository) DefaultBranch(
	_ context.Context, _ entities.RepositoryRef,
) (string, error) {
	p.Calls = append(p.Calls, "DefaultBranch")
	return p.DefaultBranchName, p.DefaultBranchErr
}

func (p *SpyObjectGraphRepository) BranchTip(
	ctx context.Context, _ entities.RepositoryRef, branch string,
) (*entities.BranchState, error) {
	p.Calls = append(p.Calls, "BranchTip")
	p.TipBranches = append(p.TipBranches, branch)
	if p.BlockTip {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.BranchTipErr != nil {
		return nil, p.BranchTipErr
	}
	return &entities.BranchState{Branch: branch, SHA: p.TipSHA}, nil
}

func (p *SpyObjectGraphRepository) CreateTree(
	_ context.Context, _ entities.RepositoryRef, baseTree string, entries []entities.TreeEntry,
) (*entities.TreeObject, error) {
	p.Calls = append(p.Calls, "CreateTree")
	p.BaseTrees = append(p.BaseTrees, baseTree)
	p.TreeInputs = append(p.TreeInputs, entries)
	if p.CreateTreeErr != nil {
		return nil, p.CreateTreeErr
	}
	return &entities.TreeObject{SHA: p.TreeSHA, BaseTree: baseTree, Entries: p.TreeEntries}, nil
}

func (p *SpyObjectGraphRepository) CreateCommit(
	_ context.Context, _ entities.RepositoryRef, message, tree string, parents []string,
) (*entities.CommitObject, error) {
	p.Calls = append(p.Calls, "CreateCommit")
	p.CommitMessages = append(p.CommitMessages, message)
	p.CommitTrees = append(p.CommitTrees, tree)
	p.CommitParents = append(p.CommitParents, parents)
	if p.CreateCommitErr != nil {
		return nil, p.CreateCommitErr
	}
	return &entities.CommitObject{SHA: p.CommitSHA, Message: message, Tree: tree, Parents: parents}, nil
}

func (p *SpyObjectGraphRepository) UpdateReference(
	_ context.Context, _ entities.RepositoryRef, ref, sha string,
) (*entities.Reference, error) {
	p.Calls = append(p.Calls, "UpdateReference")
	p.UpdatedRefs = append(p.UpdatedRefs, ref)
	p.UpdatedSHAs = append(p.UpdatedSHAs, sha)
	if p.UpdateRefErr != nil {
		return nil, p.UpdateRefErr
	}
	return &entities.Reference{Name: ref, SHA: sha}, nil
}
