package main

import (
	"log"

	"messenger-service/internal/config"
	"messenger-service/internal/monitor"
)

func main() {
	cfg := config.LoadMonitor()

	store, err := monitor.NewStore(cfg.LogFile, cfg.Capacity)
	if err != nil {
		log.Fatalf("failed to open monitor log: %v", err)
	}

	server := monitor.NewServer(store)

	log.Printf("message monitor listening on :%s file=%s records=%d", cfg.Port, cfg.LogFile, store.Count())
	if err := server.Router().Run(":" + cfg.Port); err != nil {
		log.Fatalf("monitor error: %v", err)
	}
}
