package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	goredis "github.com/redis/go-redis/v9"

	"github.com/ignite/audience-engine/internal/agent"
	"github.com/ignite/audience-engine/internal/api"
	"github.com/ignite/audience-engine/internal/config"
	"github.com/ignite/audience-engine/internal/export"
	"github.com/ignite/audience-engine/internal/generator"
	"github.com/ignite/audience-engine/internal/mailing"
	"github.com/ignite/audience-engine/internal/repository/postgres"
	redisrepo "github.com/ignite/audience-engine/internal/repository/redis"
	"github.com/ignite/audience-engine/internal/segmentation"
	"github.com/ignite/audience-engine/internal/service/campaign"
	"github.com/ignite/audience-engine/internal/service/customer"
	"github.com/ignite/audience-engine/internal/service/flow"
	"github.com/ignite/audience-engine/internal/service/segment"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Audience Engine API server starting")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	// Database
	if cfg.Database.URL == "" {
		log.Fatal("database.url is required (or set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Repositories
	customerRepo := postgres.NewCustomerRepo(db)
	segmentRepo := postgres.NewSegmentRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)
	flowRepo := postgres.NewFlowRepo(db)

	// Membership store: Redis when enabled, Postgres otherwise
	var members campaign.MembershipStore = postgres.NewMembershipRepo(db)
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		members = redisrepo.NewMembershipStore(redisClient, cfg.Redis.KeyPrefix)
		log.Printf("Campaign membership store: redis (%s)", cfg.Redis.Addr)
	} else {
		log.Println("Campaign membership store: postgres")
	}

	// Core services
	engine := segmentation.NewEngine(customerRepo)
	customerSvc := customer.NewService(customerRepo)
	segmentSvc := segment.NewService(segmentRepo, engine)
	campaignSvc := campaign.NewService(campaignRepo, members, segmentRepo, engine)
	flowSvc := flow.NewService(flowRepo, mailing.NewTemplateService(), customerRepo)

	// AI text generation collaborator (optional; rule-based fallback covers
	// the disabled case)
	var text generator.TextGenerator
	if cfg.Bedrock.Enabled {
		client, err := agent.NewBedrockClient(context.Background(), cfg.Bedrock.ModelID, cfg.Bedrock.Region)
		if err != nil {
			log.Printf("Bedrock collaborator unavailable, using rule-based generation: %v", err)
		} else {
			text = client
			log.Printf("Bedrock collaborator ready (model %s)", client.GetModelID())
		}
	}
	genSvc := generator.NewService(customerRepo, text)

	handlers := api.NewHandlers(customerSvc, segmentSvc, campaignSvc, flowSvc, genSvc)

	// Segment CSV export (optional)
	if cfg.Export.Enabled {
		store, err := export.NewS3Store(context.Background(), export.S3Config{
			Bucket: cfg.Export.S3Bucket,
			Region: cfg.Export.S3Region,
		})
		if err != nil {
			log.Printf("Export disabled: %v", err)
		} else {
			handlers.SetExporter(export.NewExporter(engine, store, cfg.Export.Prefix))
			log.Printf("Segment export enabled (bucket %s)", cfg.Export.S3Bucket)
		}
	}

	health := api.NewHealthChecker(db, redisClient)
	router := api.SetupRoutes(handlers, health, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized, server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
