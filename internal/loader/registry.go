package loader

import (
	"context"
	"errors"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

func loadFromRegistry(ctx context.Context, fetcher schema.RegistryFetcher, name string) ([]byte, error) {
	if fetcher == nil {
		return nil, errors.New("loader: registry is not configured")
	}
	if name == "" {
		return nil, errors.New("loader: registry form name is required")
	}
	text, err := fetcher.FetchYAML(ctx, name)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
