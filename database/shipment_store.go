// backend/database/shipment_store.go
package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/mntops/shipsync/backend/models"
)

// shipment_data has a fixed typed core plus whatever columns the exports
// bring along; new ones are added as nullable TEXT and never removed.
// Uniqueness per (From Site, PO No.) is enforced procedurally by
// SaveShipmentRows, not by a schema constraint - exports are full snapshots
// per PO and split shipments legitimately produce several rows per PO.
const createShipmentDataSQL = `
	CREATE TABLE IF NOT EXISTS shipment_data (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		` + "`From Site`" + ` TEXT NOT NULL,
		` + "`Source`" + ` TEXT,
		` + "`PO No.`" + ` TEXT,
		` + "`Model`" + ` TEXT,
		` + "`Ship To`" + ` TEXT,
		` + "`RSD`" + ` TEXT,
		` + "`Ship Date`" + ` TEXT,
		` + "`Week`" + ` TEXT,
		` + "`Week Name`" + ` TEXT,
		` + "`Month`" + ` TEXT,
		` + "`Region`" + ` TEXT,
		` + "`Country`" + ` TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

// Physical columns the ingestion never writes directly.
var reservedShipmentColumns = map[string]struct{}{
	"id":         {},
	"created_at": {},
}

// InitShipmentSchema creates the shipment_data table if it does not exist.
func InitShipmentSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if _, err := DB.Exec(createShipmentDataSQL); err != nil {
		return fmt.Errorf("failed to create shipment_data table: %w", err)
	}
	return nil
}

// GetShipmentColumns returns the physical column set of shipment_data.
func GetShipmentColumns() (map[string]struct{}, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	rows, err := DB.Query(`
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = 'shipment_data'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipment_data columns: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipment_data columns: %w", err)
	}
	return cols, nil
}

// EnsureShipmentColumns adds any batch column not yet present on
// shipment_data as a nullable TEXT column. Safe to run on every ingestion.
// A failed ADD COLUMN (e.g. a racing schema change) is logged and the column
// dropped from the physical set, so the subsequent insert only references
// columns that really exist.
func EnsureShipmentColumns(batchColumns []string) (map[string]struct{}, []string, error) {
	existing, err := GetShipmentColumns()
	if err != nil {
		return nil, nil, err
	}

	var added []string
	for _, col := range batchColumns {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, reserved := reservedShipmentColumns[col]; reserved {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE shipment_data ADD COLUMN %s TEXT", quoteIdent(col))
		if _, err := DB.Exec(query); err != nil {
			log.Printf("WARN Database: failed to add column %q to shipment_data (ignored): %v", col, err)
			continue
		}
		log.Printf("Database: added new column to shipment_data: %s", col)
		existing[col] = struct{}{}
		added = append(added, col)
	}
	return existing, added, nil
}

// SaveShipmentRows applies one normalized batch to shipment_data:
// the column set is synced first (DDL autocommits in MySQL, so it must
// precede the transaction), then - atomically - existing rows matching the
// batch's source site AND a PO number present in the batch are deleted and
// the whole batch inserted. Rows for PO numbers absent from the batch are
// untouched regardless of site, and other sites' rows are never touched.
// Returns the inserted row count and the columns added by the schema sync.
func SaveShipmentRows(tbl *models.Table, site string) (int, []string, error) {
	if DB == nil {
		return 0, nil, fmt.Errorf("database connection is not initialized")
	}
	if len(tbl.Rows) == 0 {
		log.Printf("Database: no rows to save for site %s", site)
		return 0, nil, nil
	}

	physical, added, err := EnsureShipmentColumns(tbl.Columns)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to sync shipment_data columns: %w", err)
	}

	var insertCols []string
	for _, col := range tbl.Columns {
		if _, ok := physical[col]; !ok {
			continue
		}
		if _, reserved := reservedShipmentColumns[col]; reserved {
			continue
		}
		insertCols = append(insertCols, col)
	}
	if len(insertCols) == 0 {
		return 0, added, fmt.Errorf("no storable columns in batch for site %s", site)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, added, fmt.Errorf("failed to begin transaction for shipment rows: %w", err)
	}
	defer tx.Rollback()

	// Selective refresh: only the (site, PO) pairs this export snapshots.
	poSet := distinctPONumbers(tbl)
	if len(poSet) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(poSet)), ", ")
		args := make([]interface{}, 0, len(poSet)+1)
		args = append(args, site)
		for _, po := range poSet {
			args = append(args, po)
		}
		query := fmt.Sprintf("DELETE FROM shipment_data WHERE %s = ? AND %s IN (%s)",
			quoteIdent(models.ColFromSite), quoteIdent(models.ColPONo), placeholders)
		if _, err := tx.Exec(query, args...); err != nil {
			return 0, added, fmt.Errorf("failed to delete old rows for site %s: %w", site, err)
		}
		log.Printf("Database: cleared existing rows for %d POs from site %s (selective refresh)", len(poSet), site)
	}

	quoted := make([]string, len(insertCols))
	for i, col := range insertCols {
		quoted[i] = quoteIdent(col)
	}
	insertQuery := fmt.Sprintf("INSERT INTO shipment_data (%s) VALUES (%s)",
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(insertCols)), ", "))
	stmt, err := tx.Prepare(insertQuery)
	if err != nil {
		return 0, added, fmt.Errorf("failed to prepare shipment insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range tbl.Rows {
		args := make([]interface{}, len(insertCols))
		for i, col := range insertCols {
			if v, ok := row[col]; ok && v != "" {
				args[i] = v
			} else {
				args[i] = nil
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return 0, added, fmt.Errorf("failed to insert shipment row (PO '%s'): %w", row[models.ColPONo], err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, added, fmt.Errorf("failed to commit shipment batch for site %s: %w", site, err)
	}

	log.Printf("Database: saved %d shipment rows for site %s", inserted, site)
	return inserted, added, nil
}

// distinctPONumbers returns the batch's PO numbers, nulls dropped, in
// first-seen order.
func distinctPONumbers(tbl *models.Table) []string {
	if !tbl.HasColumn(models.ColPONo) {
		return nil
	}
	seen := make(map[string]struct{})
	var pos []string
	for _, row := range tbl.Rows {
		po := row[models.ColPONo]
		if po == "" {
			continue
		}
		if _, dup := seen[po]; !dup {
			seen[po] = struct{}{}
			pos = append(pos, po)
		}
	}
	return pos
}

// quoteIdent backtick-quotes a MySQL identifier; export headers contain
// spaces and dots.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
