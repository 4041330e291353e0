package main

import (
	"os"
	"testing"

	"github.com/lenskings/sound-service/internal/configuration"
)

func TestMain(m *testing.M) {
	// Setup code here (runs once before all tests in this package)
	println("Setting up tests for main package...")

	exitCode := m.Run()

	println("Tearing down tests for main package...")
	os.Exit(exitCode)
}

func TestConfigDefaults(t *testing.T) {
	cfg := configuration.Load()
	if cfg.Server.Port == "" {
		t.Error("expected a default server port")
	}
	if cfg.MinIO.BucketName == "" {
		t.Error("expected a default bucket name")
	}
	if cfg.Database.ConnectionString() == "" {
		t.Error("expected a database connection string")
	}
}
