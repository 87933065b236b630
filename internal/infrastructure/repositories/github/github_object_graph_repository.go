package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// ObjectGraphRepository implements repositories.ObjectGraphRepository on the
// GitHub git data API.
type ObjectGraphRepository struct {
	client *gh.Client
}

// NewObjectGraphRepository builds an authenticated repository from settings.
// The credential strategy is selected here, once; no request is issued until
// the first method call.
func NewObjectGraphRepository(settings *entities.Settings) (repositories.ObjectGraphRepository, error) {
	baseURL, err := apiBaseURL(settings.APIURL)
	if err != nil {
		return nil, err
	}

	transport := newRetryTransport(settings.Retries, defaultRetryWaitMin, defaultRetryWaitMax)
	source, err := NewTokenSource(settings, baseURL, &http.Client{
		Transport: transport,
		Timeout:   settings.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return NewObjectGraphRepositoryWithClient(
		newAPIClient(baseURL, newAuthenticatedClient(source, transport)),
	), nil
}

// NewObjectGraphRepositoryWithClient wraps an already configured go-github client.
func NewObjectGraphRepositoryWithClient(client *gh.Client) *ObjectGraphRepository {
	return &ObjectGraphRepository{client: client}
}

func (p *ObjectGraphRepository) DefaultBranch(
	ctx context.Context,
	repo entities.RepositoryRef,
) (string, error) {
	r, _, err := p.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", classifyError(err, false)
	}
	if r.GetDefaultBranch() == "" {
		return "", fmt.Errorf("%w: repository %s reports no default branch", entities.ErrNotFound, repo)
	}
	return r.GetDefaultBranch(), nil
}

func (p *ObjectGraphRepository) BranchTip(
	ctx context.Context,
	repo entities.RepositoryRef,
	branch string,
) (*entities.BranchState, error) {
	ref, _, err := p.client.Git.GetRef(ctx, repo.Owner, repo.Name, entities.BranchRef(branch))
	if err != nil {
		return nil, classifyError(err, false)
	}

	sha := ref.GetObject().GetSHA()
	if sha == "" {
		return nil, fmt.Errorf("%w: reference %s has no target", entities.ErrNotFound, ref.GetRef())
	}
	return &entities.BranchState{Branch: branch, SHA: sha}, nil
}

func (p *ObjectGraphRepository) CreateTree(
	ctx context.Context,
	repo entities.RepositoryRef,
	baseTree string,
	entries []entities.TreeEntry,
) (*entities.TreeObject, error) {
	ghEntries := make([]*gh.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		ghEntries = append(ghEntries, &gh.TreeEntry{
			Path:    gh.String(entry.Path),
			Mode:    gh.String(entry.Mode),
			Type:    gh.String(entry.Type),
			Content: gh.String(entry.Content),
		})
	}

	tree, _, err := p.client.Git.CreateTree(ctx, repo.Owner, repo.Name, baseTree, ghEntries)
	if err != nil {
		return nil, classifyError(err, false)
	}

	created := &entities.TreeObject{
		SHA:      tree.GetSHA(),
		BaseTree: baseTree,
		Entries:  make(map[string]string, len(tree.Entries)),
	}
	for _, e := range tree.Entries {
		created.Entries[e.GetPath()] = e.GetSHA()
	}
	return created, nil
}

func (p *ObjectGraphRepository) CreateCommit(
	ctx context.Context,
	repo entities.RepositoryRef,
	message, tree string,
	parents []string,
) (*entities.CommitObject, error) {
	ghParents := make([]*gh.Commit, 0, len(parents))
	for _, parent := range parents {
		ghParents = append(ghParents, &gh.Commit{SHA: gh.String(parent)})
	}

	commit, _, err := p.client.Git.CreateCommit(
		ctx, repo.Owner, repo.Name,
		&gh.Commit{
			Message: gh.String(message),
			Tree:    &gh.Tree{SHA: gh.String(tree)},
			Parents: ghParents,
		},
		nil,
	)
	if err != nil {
		return nil, classifyError(err, false)
	}

	return &entities.CommitObject{
		SHA:     commit.GetSHA(),
		Message: commit.GetMessage(),
		Tree:    tree,
		Parents: parents,
	}, nil
}

// UpdateReference is never forced: GitHub only accepts it as a fast-forward,
// which makes the check-then-set atomic on the server.
func (p *ObjectGraphRepository) UpdateReference(
	ctx context.Context,
	repo entities.RepositoryRef,
	ref, sha string,
) (*entities.Reference, error) {
	name := entities.BranchRef(ref)
	updated, _, err := p.client.Git.UpdateRef(
		ctx, repo.Owner, repo.Name,
		&gh.Reference{
			Ref:    gh.String("refs/" + name),
			Object: &gh.GitObject{SHA: gh.String(sha)},
		},
		false,
	)
	if err != nil {
		return nil, classifyError(err, true)
	}

	return &entities.Reference{Name: name, SHA: updated.GetObject().GetSHA()}, nil
}

// classifyError maps go-github and transport errors onto the domain taxonomy.
func classifyError(err error, refUpdate bool) error {
	if errors.Is(err, entities.ErrAuthentication) {
		return err // raised by the token source during the request
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", entities.ErrTransport, err)
	}

	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return fmt.Errorf("%w: %w", entities.ErrTransport, err)
	}

	status := ghErr.Response.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", entities.ErrAuthentication, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", entities.ErrNotFound, err)
	case refUpdate && (status == http.StatusConflict || status == http.StatusUnprocessableEntity):
		return fmt.Errorf("%w: branch moved since it was read: %w", entities.ErrConflict, err)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", entities.ErrTransport, err)
	default:
		return fmt.Errorf("%w: %w", entities.ErrRejected, err)
	}
}
