package providers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite-backed catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}

// Bootstrap contains startup state derived from the database.
type Bootstrap struct {
	VotingConfig  *domain.VotingConfiguration
	DocumentCount int
}

// ProvideBootstrap seeds the voting configuration and reports catalog
// state. Deployment defaults from the environment apply only while the
// stored configuration has never been tuned through the admin API.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	ctx := context.Background()

	voting, err := storeHandle.GetVotingConfig(ctx)
	if err != nil {
		return nil, err
	}

	if untouched(voting) {
		voting.MinimumVotesRequired = cfg.Voting.MinimumVotesRequired
		voting.RequiredAgreementPercentage = cfg.Voting.AgreementPercentage
		if err := storeHandle.UpdateVotingConfig(ctx, voting); err != nil {
			return nil, err
		}
	}

	count, err := storeHandle.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("Catalog ready",
		"documents", count,
		"min_votes", voting.MinimumVotesRequired,
		"agreement_pct", voting.RequiredAgreementPercentage,
	)

	return &Bootstrap{VotingConfig: voting, DocumentCount: count}, nil
}

// untouched reports whether the stored voting configuration still
// matches the compiled defaults, field for field.
func untouched(cfg *domain.VotingConfiguration) bool {
	defaults := domain.DefaultVotingConfiguration()
	defaults.UpdatedAt = cfg.UpdatedAt
	return *cfg == defaults
}
