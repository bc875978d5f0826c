package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/database"
	"github.com/mrlokans/pharmastudy/internal/entrypoint"
	"github.com/mrlokans/pharmastudy/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		if err := migrate(config.NewConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("pharmastudy %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// migrate brings the schema up to date without starting the server.
func migrate(cfg *config.Config) error {
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	return db.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP API (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  migrate   Create or update the database schema and exit\n")
	fmt.Fprintf(os.Stderr, "  version   Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment (PORT, DATABASE_DRIVER, MEDIA_BACKEND, ...).\n")
	fmt.Fprintf(os.Stderr, "The command-line client is built from ./cmd/studyctl.\n")
}
