package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-formdispatch/internal/config"
	"github.com/goliatone/go-formdispatch/internal/githubdispatch"
	"github.com/goliatone/go-formdispatch/internal/store"
	"github.com/goliatone/go-formdispatch/internal/store/memory"
	"github.com/goliatone/go-formdispatch/internal/store/mongo"
	"github.com/goliatone/go-formdispatch/internal/store/sqlite"
)

// openStore opens the configured backend.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(nil), nil
	case config.DriverMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDB, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func (a *app) githubService() *githubdispatch.Service {
	httpClient := a.opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: a.cfg.GitHub.Timeout.Duration}
	}
	client := githubdispatch.NewClient(
		githubdispatch.WithBaseURL(a.cfg.GitHub.APIBaseURL),
		githubdispatch.WithHTTPClient(httpClient),
	)
	return githubdispatch.NewService(client, nil)
}
