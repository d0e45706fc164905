// backend/database/reference_store.go
package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/mntops/shipsync/backend/models"
)

// Reference tables are owned by the planning side of the system and are
// read-only to the ingestion path; the importers below exist for the admin
// refresh endpoint that rebuilds them from exported files.

const createOsModelsSQL = `
	CREATE TABLE IF NOT EXISTS os_models (
		Series VARCHAR(64) NOT NULL
	)`

const createSiteMappingSQL = `
	CREATE TABLE IF NOT EXISTS site_mapping (
		to_site VARCHAR(128) NOT NULL PRIMARY KEY,
		subsidiary VARCHAR(128),
		region VARCHAR(64),
		country VARCHAR(64)
	)`

// InitReferenceSchema creates the reference tables if they do not exist.
func InitReferenceSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if _, err := DB.Exec(createOsModelsSQL); err != nil {
		return fmt.Errorf("failed to create os_models table: %w", err)
	}
	if _, err := DB.Exec(createSiteMappingSQL); err != nil {
		return fmt.Errorf("failed to create site_mapping table: %w", err)
	}
	return nil
}

// GetValidModelSeries returns the set of canonical series keys, NULL and
// empty values dropped.
func GetValidModelSeries() (map[string]struct{}, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	rows, err := DB.Query("SELECT Series FROM os_models")
	if err != nil {
		return nil, fmt.Errorf("failed to query os_models: %w", err)
	}
	defer rows.Close()

	series := make(map[string]struct{})
	for rows.Next() {
		var s *string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan os_models row: %w", err)
		}
		if s != nil && *s != "" {
			series[*s] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating os_models rows: %w", err)
	}
	return series, nil
}

// GetSiteMappings returns the ship-to -> region/country map keyed by
// to_site.
func GetSiteMappings() (map[string]models.SiteMapping, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	rows, err := DB.Query("SELECT to_site, subsidiary, region, country FROM site_mapping")
	if err != nil {
		return nil, fmt.Errorf("failed to query site_mapping: %w", err)
	}
	defer rows.Close()

	mappings := make(map[string]models.SiteMapping)
	for rows.Next() {
		var toSite string
		var subsidiary, region, country *string
		if err := rows.Scan(&toSite, &subsidiary, &region, &country); err != nil {
			return nil, fmt.Errorf("failed to scan site_mapping row: %w", err)
		}
		m := models.SiteMapping{ToSite: toSite}
		if subsidiary != nil {
			m.Subsidiary = *subsidiary
		}
		if region != nil {
			m.Region = *region
		}
		if country != nil {
			m.Country = *country
		}
		mappings[toSite] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site_mapping rows: %w", err)
	}
	return mappings, nil
}

type modelSeriesRecord struct {
	Series string `csv:"Series"`
}

// ImportModelSeries rebuilds os_models from a CSV export. The file usually
// arrives UTF-8 but the planning team has shipped it in CP949/EUC-KR before,
// so non-UTF-8 input gets decoded before parsing.
func ImportModelSeries(path string) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read model series file %s: %w", path, err)
	}
	data = decodeKoreanIfNeeded(data)

	r := csv.NewReader(strings.NewReader(string(data)))
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create CSV decoder for %s: %w", path, err)
	}

	var records []modelSeriesRecord
	for {
		var rec modelSeriesRecord
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, fmt.Errorf("failed to decode model series CSV %s: %w", path, err)
		}
		if rec.Series != "" {
			records = append(records, rec)
		}
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for os_models import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM os_models"); err != nil {
		return 0, fmt.Errorf("failed to clear os_models: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO os_models (Series) VALUES (?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare os_models insert: %w", err)
	}
	defer stmt.Close()
	for _, rec := range records {
		if _, err := stmt.Exec(rec.Series); err != nil {
			return 0, fmt.Errorf("failed to insert series '%s': %w", rec.Series, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit os_models import: %w", err)
	}
	log.Printf("Database: imported %d model series from %s", len(records), path)
	return len(records), nil
}

// ImportSiteMappings rebuilds site_mapping from a tab-delimited export.
// Blank fields are stored as NULL; the literal region value "NA" is a real
// region code, not a null marker, and survives as-is.
func ImportSiteMappings(path string) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open site mapping file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create TSV decoder for %s: %w", path, err)
	}

	var records []models.SiteMapping
	for {
		var rec models.SiteMapping
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, fmt.Errorf("failed to decode site mapping TSV %s: %w", path, err)
		}
		rec.ToSite = strings.TrimSpace(rec.ToSite)
		if rec.ToSite == "" {
			continue
		}
		rec.Subsidiary = strings.TrimSpace(rec.Subsidiary)
		rec.Region = strings.TrimSpace(rec.Region)
		rec.Country = strings.TrimSpace(rec.Country)
		records = append(records, rec)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for site_mapping import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM site_mapping"); err != nil {
		return 0, fmt.Errorf("failed to clear site_mapping: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO site_mapping (to_site, subsidiary, region, country) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare site_mapping insert: %w", err)
	}
	defer stmt.Close()
	for _, rec := range records {
		// Primary key on to_site: duplicate ship-to rows in the export are
		// a data error and fail the whole import.
		if _, err := stmt.Exec(rec.ToSite, nullable(rec.Subsidiary), nullable(rec.Region), nullable(rec.Country)); err != nil {
			return 0, fmt.Errorf("failed to insert site mapping for '%s': %w", rec.ToSite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit site_mapping import: %w", err)
	}
	log.Printf("Database: imported %d site mappings from %s", len(records), path)
	return len(records), nil
}

// decodeKoreanIfNeeded converts CP949/EUC-KR bytes to UTF-8, and strips a
// UTF-8 BOM when one is present.
func decodeKoreanIfNeeded(data []byte) []byte {
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))
	if utf8.Valid(data) {
		return data
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		log.Printf("WARN Database: failed to decode non-UTF-8 reference file (%v), using raw bytes", err)
		return data
	}
	return decoded
}
