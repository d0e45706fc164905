// backend/handlers/plan_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/mntops/shipsync/backend/services"
)

// UpsertShipmentPlanHandler accepts a JSON array of plan row objects with
// human-readable spaced column names and upserts them into shipment_plans.
// Expects POST requests to /api/plan/upsert.
func UpsertShipmentPlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	defer r.Body.Close()

	affected, err := services.UpsertPlanRows(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Upsert failed: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Upsert successful",
		"rows_affected": affected,
	})
}
