package main

import (
	"log"
	"time"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/config"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/db"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/httpapi"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/rabbitmq"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	rds := redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		time.Duration(cfg.RecommendCacheTTLSec)*time.Second)
	defer rds.Close()

	// Async jobs are optional; the sync endpoints work without a broker.
	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit unavailable, async recommendations disabled: %v", err)
		rabbit = nil
	} else {
		defer rabbit.Close()
	}

	r, err := httpapi.NewRouter(gdb, cfg, rds, rabbit)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	log.Printf("server listening on %s (db=%s provider=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.AIProvider)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
