package commands

import (
	"context"
	"fmt"
	"unicode/utf8"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/manifestpush/internal/infrastructure/repositories"
)

// Publish is the interface for the publish command.
type Publish interface {
	Execute(ctx context.Context, settings *entities.Settings) (*entities.PublishResult, error)
}

// PublishCommand reads the local file and hands it to the Publisher with an
// authenticated provider. All local checks happen before the first request.
type PublishCommand struct {
	fileRepository   repositories.FileRepository
	providerRegistry *infraRepos.ProviderRegistry
}

// NewPublishCommand creates a new PublishCommand.
func NewPublishCommand(
	fileRepository repositories.FileRepository,
	providerRegistry *infraRepos.ProviderRegistry,
) *PublishCommand {
	return &PublishCommand{
		fileRepository:   fileRepository,
		providerRegistry: providerRegistry,
	}
}

// Execute publishes settings.FilePath as a new commit on the configured branch.
func (it *PublishCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) (*entities.PublishResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	content, err := it.fileRepository.ReadFile(settings.FilePath)
	if err != nil {
		return nil, entities.NewStepError(
			entities.StepReadFile, settings.FilePath,
			fmt.Errorf("%w: %w", entities.ErrConfiguration, err),
		)
	}
	if !utf8.Valid(content) {
		return nil, entities.NewStepError(
			entities.StepReadFile, settings.FilePath,
			fmt.Errorf("%w: content is not valid UTF-8", entities.ErrConfiguration),
		)
	}
	logger.Infof("Read %d bytes from %s", len(content), settings.FilePath)

	graph, err := it.providerRegistry.Get(settings.Provider, settings)
	if err != nil {
		return nil, err
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	result, err := NewPublisher(graph).Publish(ctx, entities.PublishInput{
		Repository: settings.RepositoryRef(),
		Branch:     settings.Branch,
		Path:       settings.RepoPath(),
		Content:    content,
		Message:    settings.CommitMessage,
		DryRun:     settings.DryRun,
	})
	if err != nil {
		return nil, err
	}

	if !result.DryRun {
		logger.Infof(
			"Changes committed and pushed to %s of %s: %s -> %s",
			result.Branch, result.Repository, result.BaseSHA, result.CommitSHA,
		)
	}
	return result, nil
}
