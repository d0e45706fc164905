// backend/database/plan_store.go
package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/mntops/shipsync/backend/models"
)

// shipment_plans is the API-fed planning table. Unlike shipment_data its
// uniqueness IS declared at the schema level, which is what lets the save
// path use a declarative ON DUPLICATE KEY UPDATE upsert.
const createShipmentPlansSQL = `
	CREATE TABLE IF NOT EXISTS shipment_plans (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		` + "`Planweek`" + ` VARCHAR(32) NOT NULL,
		` + "`Created_at`" + ` VARCHAR(32) NOT NULL DEFAULT '',
		` + "`Division`" + ` VARCHAR(64) NOT NULL,
		` + "`From Site`" + ` VARCHAR(128) NOT NULL,
		` + "`Region`" + ` VARCHAR(64),
		` + "`To Site`" + ` VARCHAR(128) NOT NULL,
		` + "`Mapping Model.Suffix`" + ` VARCHAR(128) NOT NULL,
		` + "`Rep PMS`" + ` VARCHAR(128),
		` + "`Category`" + ` VARCHAR(64) NOT NULL DEFAULT '',
		` + "`Frozen`" + ` VARCHAR(32),
		` + "`Month`" + ` VARCHAR(16),
		` + "`Week Name`" + ` VARCHAR(32) NOT NULL,
		` + "`SP`" + ` BIGINT,
		UNIQUE KEY shipment_plan_uc (
			` + "`Planweek`, `Created_at`, `Division`, `From Site`, `To Site`, `Mapping Model.Suffix`, `Category`, `Week Name`" + `
		)
	)`

// Column order used for both INSERT and the VALUES() update list.
var planColumns = []string{
	"Planweek", "Created_at", "Division", "From Site", "Region", "To Site",
	"Mapping Model.Suffix", "Rep PMS", "Category", "Frozen", "Month",
	"Week Name", "SP",
}

// Key columns are matched, not overwritten, on conflict.
var planKeyColumns = map[string]struct{}{
	"Planweek": {}, "Created_at": {}, "Division": {}, "From Site": {},
	"To Site": {}, "Mapping Model.Suffix": {}, "Category": {}, "Week Name": {},
}

// InitPlanSchema creates the shipment_plans table if it does not exist.
func InitPlanSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if _, err := DB.Exec(createShipmentPlansSQL); err != nil {
		return fmt.Errorf("failed to create shipment_plans table: %w", err)
	}
	return nil
}

// UpsertShipmentPlans writes plan rows in fixed-size batches inside a single
// transaction. Rows colliding on the composite unique key get their non-key
// columns overwritten in place. Batching keeps each statement under the
// engine's placeholder limit while the outer transaction keeps the whole
// request atomic. Returns the affected-row count as MySQL reports it
// (1 per insert, 2 per overwrite).
func UpsertShipmentPlans(plans []models.ShipmentPlan, batchSize int) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	if len(plans) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 5000
	}

	quoted := make([]string, len(planColumns))
	var updates []string
	for i, col := range planColumns {
		quoted[i] = quoteIdent(col)
		if _, key := planKeyColumns[col]; !key {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", quoteIdent(col), quoteIdent(col)))
		}
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(planColumns)), ", ") + ")"

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for plan upsert: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(plans); start += batchSize {
		end := start + batchSize
		if end > len(plans) {
			end = len(plans)
		}
		batch := plans[start:end]

		query := fmt.Sprintf(
			"INSERT INTO shipment_plans (%s) VALUES %s ON DUPLICATE KEY UPDATE %s",
			strings.Join(quoted, ", "),
			strings.TrimSuffix(strings.Repeat(rowPlaceholder+", ", len(batch)), ", "),
			strings.Join(updates, ", "),
		)

		args := make([]interface{}, 0, len(batch)*len(planColumns))
		for _, p := range batch {
			var sp interface{}
			if p.SP != nil {
				sp = *p.SP
			}
			args = append(args,
				p.Planweek, p.CreatedAt, p.Division, p.FromSite, nullable(p.Region),
				p.ToSite, p.MappingModelSuffix, nullable(p.RepPMS), p.Category,
				nullable(p.Frozen), nullable(p.Month), p.WeekName, sp,
			)
		}

		res, err := tx.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert plan batch [%d:%d]: %w", start, end, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows for plan batch: %w", err)
		}
		total += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit plan upsert: %w", err)
	}

	log.Printf("Database: upserted %d plan rows (%d affected)", len(plans), total)
	return total, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
