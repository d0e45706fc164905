// backend/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/mntops/shipsync/backend/config"
	"github.com/mntops/shipsync/backend/database"
	"github.com/mntops/shipsync/backend/handlers"
)

func main() {
	log.Println("Starting shipment data backend...")

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "backend/config/config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s, download dir: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName, config.AppConfig.Ingest.DownloadDir)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	if err := database.InitShipmentSchema(); err != nil {
		log.Fatalf("Error initializing shipment schema: %v", err)
	}
	if err := database.InitPlanSchema(); err != nil {
		log.Fatalf("Error initializing plan schema: %v", err)
	}
	if err := database.InitReferenceSchema(); err != nil {
		log.Fatalf("Error initializing reference schema: %v", err)
	}

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "shipment data backend is healthy"}`)
	})

	http.HandleFunc("/api/plan/upsert", handlers.UpsertShipmentPlanHandler)
	http.HandleFunc("/api/scrape/start", handlers.StartScrapeRunHandler)
	http.HandleFunc("/api/scrape/events", handlers.ScrapeEventsHandler)
	http.HandleFunc("/api/admin/refresh-reference/", handlers.RefreshReferenceHandler) // Path ends with / to catch sub-paths

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
