package app

import (
	"context"
	"fmt"
	"log/slog"
)

// RouteTableOption stores the prefix table written by the last activation.
const RouteTableOption = "route_table"

// Activate migrates the schema and records the registry's route table.
// It is safe to run repeatedly.
func Activate(ctx context.Context, store Store, registry *Registry) error {
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.SetOption(ctx, RouteTableOption, registry.RouteTable()); err != nil {
		return fmt.Errorf("store route table: %w", err)
	}
	return nil
}

// RouteTableCurrent reports whether the stored route table matches registry.
func RouteTableCurrent(ctx context.Context, store OptionStore, registry *Registry) (bool, error) {
	stored, ok, err := store.Option(ctx, RouteTableOption)
	if err != nil {
		return false, err
	}
	return ok && stored == registry.RouteTable(), nil
}

// WarnStaleRoutes logs when the configured content types changed since the
// last activation.
func WarnStaleRoutes(ctx context.Context, store OptionStore, registry *Registry, logger *slog.Logger) {
	current, err := RouteTableCurrent(ctx, store, registry)
	if err != nil {
		logger.WarnContext(ctx, "read route table", "error", err)
		return
	}
	if !current {
		logger.WarnContext(ctx, "content types changed since last activation; run `sectionsite activate`",
			"routes", registry.RouteTable())
	}
}
