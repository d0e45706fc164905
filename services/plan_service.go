// backend/services/plan_service.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/database"
	"github.com/mntops/shipsync/backend/models"
)

// UpsertPlanRows decodes a JSON array of plan rows (keys are the
// human-readable spaced column names; the struct tags map them onto the
// internal fields), validates the composite key columns, and applies the
// batched upsert. Returns MySQL's affected-row count.
func UpsertPlanRows(body io.Reader) (int64, error) {
	var plans []models.ShipmentPlan
	if err := json.NewDecoder(body).Decode(&plans); err != nil {
		return 0, fmt.Errorf("failed to decode plan rows: %w", err)
	}
	if len(plans) == 0 {
		return 0, fmt.Errorf("no data provided")
	}

	for i := range plans {
		if err := plans[i].Validate(); err != nil {
			return 0, fmt.Errorf("invalid plan row %d: %w", i, err)
		}
	}

	affected, err := database.UpsertShipmentPlans(plans, config.AppConfig.Ingest.BatchSize)
	if err != nil {
		return 0, err
	}

	log.Printf("Service: plan upsert applied %d rows (%d affected)", len(plans), affected)
	return affected, nil
}
