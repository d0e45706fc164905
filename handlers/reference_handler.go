// backend/handlers/reference_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mntops/shipsync/backend/services"
)

// RefreshReferenceHandler rebuilds a reference table from its configured
// export. Expects POST requests to /api/admin/refresh-reference/{table}
// where {table} is "models", "sites", or "all".
func RefreshReferenceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Expected path: api/admin/refresh-reference/{table}
	if len(pathParts) < 4 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/refresh-reference/{table}")
		return
	}
	table := strings.ToLower(pathParts[3])

	counts := map[string]int{}
	var err error
	switch table {
	case "models":
		counts["models"], err = services.RefreshModelSeries()
	case "sites":
		counts["sites"], err = services.RefreshSiteMappings()
	case "all":
		counts["models"], err = services.RefreshModelSeries()
		if err == nil {
			counts["sites"], err = services.RefreshSiteMappings()
		}
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid table '%s'. Use 'models', 'sites', or 'all'.", table))
		return
	}

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh %s reference data: %v", table, err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Reference data refreshed successfully.",
		"imported": counts,
	})
}
