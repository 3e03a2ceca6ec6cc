package main

import (
	"context"

	"github.com/stadtatlas/civic-cli/internal/store"
)

// openStore opens the configured sqlite store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
