package ragno

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragno-ai/ragno"
	"github.com/ragno-ai/ragno/pkg/config"
	"github.com/ragno-ai/ragno/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Ragno HTTP server",
	Long: `Start the Ragno HTTP server to provide REST API access to the retrieval engine.

The server provides endpoints for:
- Searching the knowledge graph (structured results or LLM context blocks)
- Maintaining the vector index (indexing text, upserting and removing embeddings)
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Store flags
	serverCmd.Flags().String("store-driver", "memory", "Graph store driver (memory, neo4j)")
	serverCmd.Flags().String("store-uri", "", "Graph store URI")
	serverCmd.Flags().String("store-username", "", "Graph store username")
	serverCmd.Flags().String("store-password", "", "Graph store password")
	serverCmd.Flags().String("store-database", "", "Graph store database name")

	// Embedding flags
	serverCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
	serverCmd.Flags().String("embedding-cache-path", "", "Directory for the persistent embedding cache")

	// Extraction flags
	serverCmd.Flags().String("extraction-model", "gpt-4o-mini", "Entity extraction model")
	serverCmd.Flags().String("extraction-api-key", "", "Entity extraction API key")

	// Telemetry flags
	serverCmd.Flags().Bool("telemetry", false, "Enable query telemetry")
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for query telemetry parquet files")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	logger := buildLogger(cfg)

	// Initialize the client
	fmt.Println("Initializing Ragno...")
	client, err := ragno.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Ragno: %w", err)
	}

	fmt.Printf("Ragno initialized with store driver: %s\n", cfg.Store.Driver)

	// Create and setup server
	srv := server.New(cfg, client)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if err := client.Close(shutdownCtx); err != nil {
			return fmt.Errorf("client shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Store flags
	if cmd.Flags().Changed("store-driver") {
		cfg.Store.Driver, _ = cmd.Flags().GetString("store-driver")
	}
	if cmd.Flags().Changed("store-uri") {
		cfg.Store.URI, _ = cmd.Flags().GetString("store-uri")
	}
	if cmd.Flags().Changed("store-username") {
		cfg.Store.Username, _ = cmd.Flags().GetString("store-username")
	}
	if cmd.Flags().Changed("store-password") {
		cfg.Store.Password, _ = cmd.Flags().GetString("store-password")
	}
	if cmd.Flags().Changed("store-database") {
		cfg.Store.Database, _ = cmd.Flags().GetString("store-database")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
	if cmd.Flags().Changed("embedding-cache-path") {
		cfg.Embedding.CachePath, _ = cmd.Flags().GetString("embedding-cache-path")
	}

	// Extraction flags
	if cmd.Flags().Changed("extraction-model") {
		cfg.Extraction.Model, _ = cmd.Flags().GetString("extraction-model")
	}
	if cmd.Flags().Changed("extraction-api-key") {
		cfg.Extraction.APIKey, _ = cmd.Flags().GetString("extraction-api-key")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry") {
		cfg.Telemetry.Enabled, _ = cmd.Flags().GetBool("telemetry")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
