package providers

import (
	"github.com/samber/do/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
	"github.com/jumpchainsearch/jumpchain-server/internal/validation"
)

// ProvideValidator provides the struct validator shared by services.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSearchService provides the search orchestrator.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewSearchService(storeHandle.Store, cfg.Search, log.Logger), nil
}

// ProvideDocumentService provides document retrieval and view tracking.
func ProvideDocumentService(i do.Injector) (*service.DocumentService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewDocumentService(storeHandle.Store, log.Logger), nil
}

// ProvideDocumentCountService provides the cached catalog count.
func ProvideDocumentCountService(i do.Injector) (*service.DocumentCountService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewDocumentCountService(storeHandle.Store, log.Logger), nil
}

// ProvideTagRuleService provides approved rule management and replay.
func ProvideTagRuleService(i do.Injector) (*service.TagRuleService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewTagRuleService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides keyword-driven tag generation.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	keywordHandle := do.MustInvoke[*KeywordStoreHandle](i)
	ruleService := do.MustInvoke[*service.TagRuleService](i)

	return service.NewTagService(storeHandle.Store, keywordHandle.Store, ruleService, log.Logger), nil
}

// ProvideVotingService provides the tag voting consensus engine.
func ProvideVotingService(i do.Injector) (*service.VotingService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewVotingService(storeHandle.Store, validator, log.Logger), nil
}
