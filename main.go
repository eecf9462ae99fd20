// ABOUTME: Entry point for the directory sync CLI
// ABOUTME: Routes sync, login, and status commands
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"dirsync/cli"
	"dirsync/db"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const version = "0.2.0"

func main() {
	// Optional .env for IdP endpoints and client credentials
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/dirsync/dirsync.db)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dirsync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "login":
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "sync":
		database := openDatabase(*dbPath)
		defer database.Close()
		if err := cli.SyncCommand(database, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "status":
		database := openDatabase(*dbPath)
		defer database.Close()
		if err := cli.StatusCommand(database, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openDatabase(dbPath string) *sql.DB {
	finalPath := getDatabasePath(dbPath)
	database, err := db.OpenDatabase(finalPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return database
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(xdg.DataHome, "dirsync", "dirsync.db")
}

func printUsage() {
	fmt.Printf(`dirsync v%s - mirror a remote directory into a local contact store

USAGE:
  dirsync [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/dirsync/dirsync.db)

COMMANDS:
  dirsync login          Authenticate against the identity provider
  dirsync sync           Run one reconciliation pass
    --account <name>       Local account name (default: "default")
    --regions <codes>      Comma-separated region codes to sync (e.g. se,us)
    --provider <name>      Directory provider: idp or google (default: idp)
    --photo-dim <n>        Maximum photo dimension (0 = store default)
  dirsync status         Show sync state and mirror counts
    --account <name>       Local account name

ENVIRONMENT:
  DIRSYNC_CLIENT_ID / DIRSYNC_CLIENT_SECRET   OAuth client credentials
  DIRSYNC_AUTH_URL / DIRSYNC_TOKEN_URL        IdP OAuth endpoints (Google if unset)
  DIRSYNC_USERS_URL                           IdP user-list endpoint
  DIRSYNC_ACCOUNT / DIRSYNC_REGIONS           Default account and regions
  DIRSYNC_PROVIDER                            Default provider (idp or google)

EXAMPLES:
  # Authenticate, then mirror Swedish and US colleagues
  dirsync login
  dirsync sync --regions se,us

  # Check what the last pass did
  dirsync status

`, version)
}
