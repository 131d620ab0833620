package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/api"
	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Shutdown()
	return err
}

// ProvideHTTPServer provides the HTTP server, already listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	services := &api.Services{
		Search:   do.MustInvoke[*service.SearchService](i),
		Document: do.MustInvoke[*service.DocumentService](i),
		Count:    do.MustInvoke[*service.DocumentCountService](i),
		Tag:      do.MustInvoke[*service.TagService](i),
		Rule:     do.MustInvoke[*service.TagRuleService](i),
		Voting:   do.MustInvoke[*service.VotingService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, cfg, log.Logger)
	srv := handler.HTTPServer(cfg.Server)

	if cfg.Server.AdminToken == "" {
		log.Warn("No admin token configured; admin endpoints are disabled")
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
