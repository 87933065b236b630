package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/manifestpush/internal/domain/commands"
	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/infrastructure/controllers"
	"github.com/rios0rios0/manifestpush/internal/infrastructure/repositories"
)

// RegisterProviders wires the provider registry, the publish command and its
// controller into the container, bottom-up.
func RegisterProviders(container *dig.Container) error {
	layers := []func(*dig.Container) error{
		repositories.RegisterProviders,
		entities.RegisterProviders,
		commands.RegisterProviders,
		controllers.RegisterProviders,
	}
	for _, register := range layers {
		if err := register(container); err != nil {
			return err
		}
	}

	return container.Provide(NewAppInternal)
}
