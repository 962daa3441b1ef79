package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/datatable/internal/database"
	"github.com/jask/datatable/internal/database/repository"
)

// MaintenanceService houses destructive actions.
type MaintenanceService struct {
	DB     *sql.DB
	Events *repository.Events
}

// Reset wipes all user data and keeps the schema.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"transaction_tags",
			"merchant_rules",
			"transactions",
			"tags",
			"categories",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if s.Events != nil {
		s.Events.Publish(repository.Change{Op: repository.OpReset})
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
