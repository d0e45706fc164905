// backend/services/run_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/models"
	"github.com/mntops/shipsync/backend/scraper"
)

// The scrape loop runs far longer than any HTTP request, so it is spawned in
// the background and talks to the request layer over a bounded event
// channel. Closing the channel after the complete/error event is the
// end-of-stream sentinel. At most one run exists at a time; the ingestion
// path assumes a single writer.

var ErrRunInProgress = errors.New("a scrape run is already in progress")
var ErrNoActiveRun = errors.New("no scrape run is active")

const eventBuffer = 256

var runState struct {
	mu      sync.Mutex
	running bool
	events  chan models.Event
}

// StartScrapeRun launches the sequential per-site ingest loop in the
// background. The browser automation is an external collaborator: it drops
// export files into the configured download directory, and this loop waits
// for each one, ingests it, and moves on. Per-site failures are recorded in
// the trail and do not stop the run.
func StartScrapeRun(targets []config.ScrapeTarget) error {
	runState.mu.Lock()
	defer runState.mu.Unlock()
	if runState.running {
		return ErrRunInProgress
	}
	if len(targets) == 0 {
		return fmt.Errorf("no scrape targets configured")
	}

	runState.running = true
	runState.events = make(chan models.Event, eventBuffer)
	go runScrape(targets, runState.events)
	return nil
}

// AttachListener hands the active run's event channel to the HTTP layer.
// The channel is closed when the run is over.
func AttachListener() (<-chan models.Event, error) {
	runState.mu.Lock()
	defer runState.mu.Unlock()
	if !runState.running || runState.events == nil {
		return nil, ErrNoActiveRun
	}
	return runState.events, nil
}

func runScrape(targets []config.ScrapeTarget, events chan models.Event) {
	defer func() {
		runState.mu.Lock()
		runState.running = false
		runState.events = nil
		runState.mu.Unlock()
		close(events)
	}()

	cfg := config.AppConfig.Ingest
	var trail []string

	for _, target := range targets {
		emit(events, models.EventStatus, target.Site,
			fmt.Sprintf("waiting for export from %s (max %s)", target.Site, cfg.DownloadTimeout))

		initial, err := scraper.SnapshotDir(cfg.DownloadDir)
		if err != nil {
			trail = append(trail, fmt.Sprintf("%s: FAILED (%v)", target.Site, err))
			emit(events, models.EventError, target.Site, err.Error())
			continue
		}

		path, err := scraper.WaitForNewFile(cfg.DownloadDir, initial, cfg.DownloadTimeout, cfg.PollInterval)
		if err != nil {
			trail = append(trail, fmt.Sprintf("%s: no file (%v)", target.Site, err))
			emit(events, models.EventError, target.Site,
				fmt.Sprintf("no export found for %s: %v", target.Site, err))
			continue
		}
		emit(events, models.EventLog, target.Site, fmt.Sprintf("new file detected: %s", path))

		report, err := IngestDownloadedFile(path, IngestOptions{
			Site:            target.Site,
			System:          cfg.SourceSystem,
			SkipModelFilter: target.SkipModelFilter,
		})
		if err != nil {
			trail = append(trail, fmt.Sprintf("%s: FAILED (%v)", target.Site, err))
			emit(events, models.EventError, target.Site, err.Error())
			continue
		}

		for _, m := range report.ExcludedModels {
			emit(events, models.EventLog, target.Site, fmt.Sprintf("excluded model: %s", m))
		}
		for _, s := range report.UnmappedShipTos {
			emit(events, models.EventLog, target.Site, fmt.Sprintf("unmapped ship-to: %s", s))
		}
		trail = append(trail, fmt.Sprintf("%s: %d/%d rows stored", target.Site, report.RowsInserted, report.RowsParsed))
		emit(events, models.EventStatus, target.Site,
			fmt.Sprintf("ingest complete for %s: %d rows stored", target.Site, report.RowsInserted))
	}

	emit(events, models.EventComplete, "", strings.Join(trail, "; "))
	log.Printf("Service: scrape run finished: %s", strings.Join(trail, "; "))
}

// emit sends with a timeout so a stalled or absent consumer cannot wedge the
// run; a dropped log line is preferable to a stuck ingestion loop.
func emit(events chan models.Event, typ models.EventType, site, message string) {
	ev := models.Event{Type: typ, Message: message, Site: site, At: time.Now()}
	select {
	case events <- ev:
	case <-time.After(5 * time.Second):
		log.Printf("WARN Service: event channel full, dropping %s event: %s", typ, message)
	}
}
