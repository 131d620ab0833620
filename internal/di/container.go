// Package di provides dependency injection configuration for the server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/di/providers"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
	"github.com/jumpchainsearch/jumpchain-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBootstrap)

	// Keyword tables
	do.Provide(injector, providers.ProvideKeywordStore)

	// Business services
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideDocumentService)
	do.Provide(injector, providers.ProvideDocumentCountService)
	do.Provide(injector, providers.ProvideTagRuleService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideVotingService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.Bootstrap](injector)
	_ = do.MustInvoke[*providers.KeywordStoreHandle](injector)

	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.DocumentService](injector)
	_ = do.MustInvoke[*service.DocumentCountService](injector)
	_ = do.MustInvoke[*service.TagRuleService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.VotingService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
