// backend/services/reference_service.go
package services

import (
	"fmt"
	"log"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/database"
	"github.com/mntops/shipsync/backend/scraper"
)

// RefreshModelSeries rebuilds the os_models reference table. When a source
// URL is configured the export is fetched first; otherwise the configured
// local path is imported as-is.
func RefreshModelSeries() (int, error) {
	ref := config.AppConfig.Reference
	if ref.ModelSeriesPath == "" {
		return 0, fmt.Errorf("model series path is not configured")
	}
	if ref.ModelSeriesURL != "" {
		if err := scraper.DownloadFile(ref.ModelSeriesURL, ref.ModelSeriesPath); err != nil {
			return 0, fmt.Errorf("failed to download model series export: %w", err)
		}
	}

	count, err := database.ImportModelSeries(ref.ModelSeriesPath)
	if err != nil {
		return 0, err
	}
	log.Printf("Service: refreshed os_models with %d series", count)
	return count, nil
}

// RefreshSiteMappings rebuilds the site_mapping reference table.
func RefreshSiteMappings() (int, error) {
	ref := config.AppConfig.Reference
	if ref.SiteMappingPath == "" {
		return 0, fmt.Errorf("site mapping path is not configured")
	}
	if ref.SiteMappingURL != "" {
		if err := scraper.DownloadFile(ref.SiteMappingURL, ref.SiteMappingPath); err != nil {
			return 0, fmt.Errorf("failed to download site mapping export: %w", err)
		}
	}

	count, err := database.ImportSiteMappings(ref.SiteMappingPath)
	if err != nil {
		return 0, err
	}
	log.Printf("Service: refreshed site_mapping with %d entries", count)
	return count, nil
}
