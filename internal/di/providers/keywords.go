package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/keywords"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
)

// KeywordStoreHandle wraps the keyword store with its watch context for
// lifecycle management.
type KeywordStoreHandle struct {
	*keywords.Store
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *KeywordStoreHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return h.Store.Close()
}

// ProvideKeywordStore provides the keyword tables, optionally
// hot-reloading the backing file.
func ProvideKeywordStore(i do.Injector) (*KeywordStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	kw, err := keywords.NewStore(cfg.Keywords.Path, log)
	if err != nil {
		return nil, err
	}

	handle := &KeywordStoreHandle{Store: kw}

	if cfg.Keywords.Path != "" && cfg.Keywords.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		handle.cancel = cancel
		if err := kw.Watch(ctx); err != nil {
			cancel()
			_ = kw.Close()
			return nil, err
		}
		log.Info("Keyword file watch started", "path", cfg.Keywords.Path)
	}

	return handle, nil
}
