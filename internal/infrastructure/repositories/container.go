package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/runref/internal/domain/entities"
	domainRepos "github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/archive"
	adoRepo "github.com/rios0rios0/runref/internal/infrastructure/repositories/azuredevops"
	bbRepo "github.com/rios0rios0/runref/internal/infrastructure/repositories/bitbucket"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/cache"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
	ghRepo "github.com/rios0rios0/runref/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/runref/internal/infrastructure/repositories/gitlab"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/runner"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register concrete repositories
	constructors := []interface{}{
		credentials.NewKeyringStore,
		credentials.NewEnvAcquirer,
		credentials.NewPromptAcquirer,
		cache.NewYAMLCacheRepository,
		archive.NewZipArchiveRepository,
		runner.NewDotnetRunnerRepository,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *credentials.KeyringStore) domainRepos.CredentialStore {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		env *credentials.EnvAcquirer, prompt *credentials.PromptAcquirer,
	) domainRepos.CredentialAcquirer {
		return credentials.NewChainAcquirer(env, prompt)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *cache.YAMLCacheRepository) domainRepos.CacheRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *archive.ZipArchiveRepository) domainRepos.ArchiveRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *runner.DotnetRunnerRepository) domainRepos.RunnerRepository {
		return impl
	}); err != nil {
		return err
	}

	// Register provider registry with all provider factories
	return container.Provide(func(
		settings *entities.Settings,
		store domainRepos.CredentialStore,
		acquirer domainRepos.CredentialAcquirer,
	) *ProviderRegistry {
		reg := NewProviderRegistry(domainRepos.ProviderOptions{
			Settings: settings,
			Store:    store,
			Acquirer: acquirer,
		})
		reg.Register(ghRepo.Host, ghRepo.NewProviderRepository)
		reg.Register(ghRepo.GistHost, ghRepo.NewGistProviderRepository)
		reg.Register(glRepo.Host, glRepo.NewProviderRepository)
		reg.Register(adoRepo.Host, adoRepo.NewProviderRepository)
		reg.Register(bbRepo.Host, bbRepo.NewProviderRepository)
		return reg
	})
}
