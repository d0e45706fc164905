// backend/handlers/scrape_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/models"
	"github.com/mntops/shipsync/backend/services"
)

const heartbeatInterval = 15 * time.Second

// StartScrapeRunHandler kicks off the background ingest loop over the
// configured targets. Expects POST to /api/scrape/start. Returns 409 if a
// run is already in progress.
func StartScrapeRunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := services.StartScrapeRun(config.AppConfig.Targets); err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to start scrape run: %v", err))
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Scrape run started. Stream progress from /api/scrape/events.",
	})
}

// ScrapeEventsHandler streams the active run's events as server-sent events
// (log, status, complete, error), with a heartbeat while nothing else is
// flowing so the client connection does not look stalled. The stream ends
// when the run closes its channel or the client goes away.
func ScrapeEventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	events, err := services.AttachListener()
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming is not supported by this connection")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case ev, open := <-events:
			if !open {
				// Channel close is the end-of-stream sentinel.
				return
			}
			writeSSE(w, flusher, ev)
		case <-heartbeat.C:
			writeSSE(w, flusher, models.Event{Type: models.EventHeartbeat, At: time.Now()})
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshalling SSE event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	flusher.Flush()
}
