package recplatform

import (
	"context"

	"github.com/votelane/reco-service/internal/pkg/logger"
)

// SetupConfig names the managed resources this service expects on the
// platform.
type SetupConfig struct {
	UsersTable     string
	ElectionsTable string
	EventsTable    string
	ElectionEngine string
}

// EnsureProvisioned idempotently creates the three tables and the election
// engine. Safe to run on every deploy: creates that conflict are reported
// as already existing and skipped.
func EnsureProvisioned(ctx context.Context, c *Client, cfg SetupConfig) error {
	log := logger.WithCtx(ctx)

	tables := []struct {
		name       string
		schemaType string
	}{
		{cfg.UsersTable, "users"},
		{cfg.ElectionsTable, "items"},
		{cfg.EventsTable, "interactions"},
	}

	for _, t := range tables {
		res, err := c.CreateTable(ctx, t.name, t.schemaType)
		if err != nil {
			return err
		}
		if res.Exists {
			log.Info().Str("table", t.name).Msg("table already provisioned")
		} else {
			log.Info().Str("table", t.name).Msg("table created")
		}
	}

	spec := EngineSpec{
		Name:       cfg.ElectionEngine,
		ItemTable:  cfg.ElectionsTable,
		UserTable:  cfg.UsersTable,
		EventTable: cfg.EventsTable,
		Queries: map[string]string{
			"items":  "SELECT * FROM " + cfg.ElectionsTable,
			"users":  "SELECT * FROM " + cfg.UsersTable,
			"events": "SELECT * FROM " + cfg.EventsTable + " WHERE label != 0",
		},
		Policy: &ScoringPolicy{
			Objective:      "label",
			ExplorationPct: 0.05,
		},
	}

	res, err := c.CreateEngine(ctx, spec)
	if err != nil {
		return err
	}
	if res.Exists {
		log.Info().Str("engine", spec.Name).Msg("engine already provisioned")
	} else {
		log.Info().Str("engine", spec.Name).Msg("engine created")
	}
	return nil
}
