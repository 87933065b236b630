package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	domainRepos "github.com/rios0rios0/manifestpush/internal/domain/repositories"
	fsRepo "github.com/rios0rios0/manifestpush/internal/infrastructure/repositories/filesystem"
	ghRepo "github.com/rios0rios0/manifestpush/internal/infrastructure/repositories/github"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all provider factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register(entities.ProviderGitHub, ghRepo.NewObjectGraphRepository)
		return reg
	}); err != nil {
		return err
	}

	// Local files are read relative to the working directory
	if err := container.Provide(func() domainRepos.FileRepository {
		return fsRepo.NewWorkingDirFileRepository()
	}); err != nil {
		return err
	}

	return nil
}
