package controllers

import (
	"github.com/rios0rios0/runref/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewRunController); err != nil {
		return err
	}
	if err := container.Provide(NewGistController); err != nil {
		return err
	}
	if err := container.Provide(NewCacheController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates the subcommand controllers into a slice for the AppInternal.
func NewControllers(
	gistController *GistController,
	cacheController *CacheController,
) *[]entities.Controller {
	return &[]entities.Controller{
		gistController,
		cacheController,
	}
}
