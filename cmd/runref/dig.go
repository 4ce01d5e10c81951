package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/runref/internal"
	"github.com/rios0rios0/runref/internal/infrastructure/controllers"
)

func newContainer() *dig.Container {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}
	return container
}

func injectAppContext(container *dig.Container) *internal.AppInternal {
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		panic(err)
	}

	return appInternal
}

func injectRunController(container *dig.Container) *controllers.RunController {
	var runController *controllers.RunController
	if err := container.Invoke(func(rc *controllers.RunController) {
		runController = rc
	}); err != nil {
		panic(err)
	}

	return runController
}
