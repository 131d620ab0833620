package api

import (
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Search   *service.SearchService
	Document *service.DocumentService
	Count    *service.DocumentCountService
	Tag      *service.TagService
	Rule     *service.TagRuleService
	Voting   *service.VotingService
}
