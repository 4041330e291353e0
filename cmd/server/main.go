package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/lenskings/sound-service/cmd/middleware"
	"github.com/lenskings/sound-service/internal/api"
	"github.com/lenskings/sound-service/internal/configuration"
	natsroutes "github.com/lenskings/sound-service/internal/nats"
	"github.com/lenskings/sound-service/internal/services"
	"github.com/lenskings/sound-service/internal/storage"
)

func main() {
	cfg := configuration.Load()

	if cfg.DDAgentHost != "" {
		tracer.Start(
			tracer.WithService("sound-service"),
			tracer.WithAgentAddr(cfg.DDAgentHost+":8126"),
		)
		defer tracer.Stop()
	}

	// Catalog store: PostgreSQL, with a JSON-file fallback for local dev.
	if _, err := storage.InitializePostgres(cfg.Database.ConnectionString()); err != nil {
		log.Printf("Warning: Failed to connect to PostgreSQL: %v", err)
		log.Println("Falling back to local JSON metadata store...")
		local, lerr := storage.NewLocalStore("upload_records.json")
		if lerr != nil {
			log.Fatalf("Failed to initialize local store: %v", lerr)
		}
		storage.Initialize(local)
	}

	if err := services.InitializeMinio(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName,
		cfg.MinIO.UseSSL,
	); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := middleware.InitAuth(cfg.KeycloakUrl); err != nil {
		log.Fatalf("Failed to initialize OIDC verifier: %v", err)
	}

	if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("Upload events and background scans are disabled")
	} else {
		for subject, handler := range natsroutes.Routes() {
			// durable names may not contain '.'
			durable := "sound-service-" + strings.ReplaceAll(subject, ".", "-")
			if _, err := services.SubscribeEvent(subject, durable, handler); err != nil {
				log.Printf("Warning: failed to subscribe to %s: %v", subject, err)
			}
		}
	}

	setupGracefulShutdown()

	r := gin.Default()
	api.RegisterRoutes(r)

	log.Printf("Server starting on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		services.CloseNATS()
		os.Exit(0)
	}()
}
