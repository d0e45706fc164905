// backend/services/ingest_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/database"
	"github.com/mntops/shipsync/backend/ingest"
	"github.com/mntops/shipsync/backend/models"
)

// IngestOptions carries the provenance and policy for one batch.
type IngestOptions struct {
	Site            string
	System          string
	SkipModelFilter bool
}

// IngestDownloadedFile runs the full pipeline for one downloaded export:
// read -> normalize -> enrich -> column sync -> selective refresh. The file
// is deleted on success (it is a transient download); on a failed commit it
// is kept on disk for retry or inspection and no store mutation survives.
//
// Enrichment is best-effort: if a reference table cannot be read, that step
// is skipped with a warning and the batch still lands. Only an unreadable
// file or a failed transaction aborts the batch.
func IngestDownloadedFile(path string, opt IngestOptions) (*models.IngestReport, error) {
	log.Printf("Service: ingesting %s (site: %s)", filepath.Base(path), opt.Site)

	tbl, err := ingest.ReadWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", filepath.Base(path), err)
	}

	report := &models.IngestReport{
		SourceFile: filepath.Base(path),
		FromSite:   opt.Site,
		RowsParsed: len(tbl.Rows),
	}

	ingest.Normalize(tbl, opt.Site, opt.System, config.AppConfig.Remaps)

	// Model filter. Some source categories legitimately have no series
	// table, and a reference read failure skips the filter rather than
	// losing the batch.
	if opt.SkipModelFilter || config.AppConfig.Ingest.SkipModelFilter {
		report.ModelFilterSkipped = true
	} else {
		validSeries, err := database.GetValidModelSeries()
		if err != nil {
			log.Printf("WARN Service: could not load valid model series (%v); skipping model filter for this batch", err)
			report.ModelFilterSkipped = true
		} else {
			report.ExcludedModels = ingest.FilterModels(tbl, validSeries)
			for _, m := range report.ExcludedModels {
				log.Printf("Service: model excluded (not in os_models): %s", m)
			}
		}
	}

	// Site mapping join.
	mappings, err := database.GetSiteMappings()
	if err != nil {
		log.Printf("WARN Service: could not load site mappings (%v); rows keep empty Region/Country", err)
	} else {
		report.UnmappedShipTos = ingest.JoinSiteMappings(tbl, mappings)
		if len(report.UnmappedShipTos) > 0 {
			log.Printf("WARN Service: %d ship-to value(s) missing from site_mapping: %v",
				len(report.UnmappedShipTos), report.UnmappedShipTos)
			if config.AppConfig.Ingest.BlockOnUnmappedSite {
				return report, fmt.Errorf("unmapped ship-to values %v and block_on_unmapped_site is set; add them to site_mapping and retry", report.UnmappedShipTos)
			}
		}
	}

	inserted, added, err := database.SaveShipmentRows(tbl, opt.Site)
	if err != nil {
		// File stays on disk for retry.
		return report, fmt.Errorf("failed to save batch for site %s: %w", opt.Site, err)
	}
	report.RowsInserted = inserted
	report.ColumnsAdded = added

	if err := os.Remove(path); err != nil {
		log.Printf("WARN Service: failed to remove ingested file %s: %v", path, err)
	} else {
		log.Printf("Service: removed ingested file %s", path)
	}

	log.Printf("Service: ingest complete for %s: %d/%d rows stored", opt.Site, report.RowsInserted, report.RowsParsed)
	return report, nil
}
