//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/AutoTabber/internal/storage"
	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	allowedOrigins string
)

var rootCmd = &cobra.Command{
	Use:   "autotab-server",
	Short: "HTTP API for harmonica tab transcription",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	rootCmd.Flags().StringVar(&dbPath, "db", getEnvOrDefault("AUTOTAB_DB_PATH", storage.DefaultDBFile), "Path to SQLite database")
	rootCmd.Flags().StringVar(&tempDir, "temp", getEnvOrDefault("AUTOTAB_TEMP_DIR", "/tmp"), "Temporary directory")
	rootCmd.Flags().StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(list string) []string {
	if list == "*" {
		return []string{"*"}
	}
	origins := strings.Split(list, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func runServer(cmd *cobra.Command, args []string) error {
	store, err := autotabber.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		AllowedOrigins: parseOrigins(allowedOrigins),
	}

	server, err := NewServer(store, config)
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer server.Close()

	return server.Start()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
