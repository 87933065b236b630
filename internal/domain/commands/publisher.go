package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// Publisher publishes one file as a new commit using only remote object-graph
// primitives. Each step consumes the output of the previous one, so the
// sequence is strictly ordered and any failure aborts the remaining steps.
// Objects created before a failure stay unreferenced and do not affect the branch.
type Publisher struct {
	graph repositories.ObjectGraphRepository
}

// NewPublisher creates a Publisher on top of the given object-graph repository.
func NewPublisher(graph repositories.ObjectGraphRepository) *Publisher {
	return &Publisher{graph: graph}
}

// Publish runs resolve branch -> read tip -> create tree -> create commit -> advance reference.
func (it *Publisher) Publish(
	ctx context.Context,
	input entities.PublishInput,
) (*entities.PublishResult, error) {
	repo := input.Repository

	branch := input.Branch
	if branch == "" {
		defaultBranch, err := it.graph.DefaultBranch(ctx, repo)
		if err != nil {
			return nil, entities.NewStepError(entities.StepResolveBranch, repo.String(), err)
		}
		logger.Infof("No branch given, using default branch %q of %s", defaultBranch, repo)
		branch = defaultBranch
	}
	ref := entities.BranchRef(branch)
	branch = strings.TrimPrefix(ref, "heads/")

	tip, err := it.graph.BranchTip(ctx, repo, branch)
	if err != nil {
		return nil, entities.NewStepError(entities.StepReadTip, ref, err)
	}
	logger.Debugf("Tip of %s on %s is %s", ref, repo, tip.SHA)

	result := &entities.PublishResult{
		Repository: repo,
		Branch:     branch,
		Path:       input.Path,
		BaseSHA:    tip.SHA,
		DryRun:     input.DryRun,
	}

	if input.DryRun {
		logger.Infof(
			"[dry-run] Would commit %q (%d bytes) on %s of %s with parent %s",
			input.Path, len(input.Content), branch, repo, tip.SHA,
		)
		return result, nil
	}

	entry := entities.TreeEntry{
		Path:    input.Path,
		Mode:    entities.RegularFileMode,
		Type:    entities.BlobType,
		Content: string(input.Content),
	}
	tree, err := it.graph.CreateTree(ctx, repo, tip.SHA, []entities.TreeEntry{entry})
	if err != nil {
		return nil, entities.NewStepError(entities.StepCreateTree, input.Path, err)
	}
	if verifyErr := verifyBlob(tree, input.Path, input.Content); verifyErr != nil {
		return nil, entities.NewStepError(entities.StepCreateTree, input.Path, verifyErr)
	}
	result.TreeSHA = tree.SHA
	logger.Debugf("Created tree %s on base %s", tree.SHA, tip.SHA)

	commit, err := it.graph.CreateCommit(ctx, repo, input.Message, tree.SHA, []string{tip.SHA})
	if err != nil {
		return nil, entities.NewStepError(entities.StepCreateCommit, tree.SHA, err)
	}
	logger.Debugf("Created commit %s with parent %s", commit.SHA, tip.SHA)

	updated, err := it.graph.UpdateReference(ctx, repo, ref, commit.SHA)
	if err != nil {
		return nil, entities.NewStepError(entities.StepUpdateReference, ref, err)
	}

	result.CommitSHA = updated.SHA
	return result, nil
}

// verifyBlob compares the provider's object id for path with the local git blob hash.
// Nested paths are not listed in the top-level tree and are skipped.
func verifyBlob(tree *entities.TreeObject, path string, content []byte) error {
	got, ok := tree.Entries[path]
	if !ok || got == "" {
		return nil
	}

	want := plumbing.ComputeHash(plumbing.BlobObject, content).String()
	if got != want {
		return fmt.Errorf("%w: stored blob %s does not match local content %s", entities.ErrRejected, got, want)
	}
	return nil
}
