// ABOUTME: Sync CLI command running one reconciliation pass
// ABOUTME: Wires directory client, store, and engine; prints the pass summary
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"dirsync/db"
	"dirsync/directory"
	"dirsync/models"
	"dirsync/sync"
)

// SyncCommand runs one reconciliation pass for the configured account.
func SyncCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	account := fs.String("account", envOr("DIRSYNC_ACCOUNT", "default"), "Local account name")
	regions := fs.String("regions", os.Getenv("DIRSYNC_REGIONS"), "Comma-separated region codes to sync (e.g. se,us)")
	provider := fs.String("provider", envOr("DIRSYNC_PROVIDER", "idp"), "Directory provider: idp or google")
	photoDim := fs.Int("photo-dim", 0, "Maximum photo dimension (0 = store default)")
	_ = fs.Parse(args)

	scope := models.Scope{Account: *account, Regions: splitRegions(*regions)}
	if len(scope.Regions) == 0 {
		return fmt.Errorf("no regions enabled; set --regions or DIRSYNC_REGIONS")
	}

	ctx := context.Background()

	token, err := directory.LoadToken()
	if err != nil {
		return err
	}

	oauthCfg := directory.NewOAuthConfig()
	var dir sync.Directory
	switch *provider {
	case "google":
		g, err := directory.NewGoogleDirectory(ctx, oauthCfg, token)
		if err != nil {
			return err
		}
		dir = g
	case "idp":
		usersURL := os.Getenv("DIRSYNC_USERS_URL")
		if usersURL == "" {
			return fmt.Errorf("DIRSYNC_USERS_URL is not set")
		}
		dir = directory.NewClient(directory.Config{UsersURL: usersURL}, oauthCfg, token)
	default:
		return fmt.Errorf("unknown provider %q", *provider)
	}

	store := db.NewStore(database, *photoDim)
	engine := sync.NewEngine(dir, store)

	fmt.Printf("Syncing directory for account %q (regions: %s)...\n", scope.Account, strings.Join(scope.Regions, ", "))
	if err := db.UpdateSyncStatus(database, scope.Account, models.SyncStatusSyncing, nil); err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	result, err := engine.Run(ctx, scope)
	if err != nil {
		errMsg := err.Error()
		_ = db.UpdateSyncStatus(database, scope.Account, models.SyncStatusError, &errMsg)
		return fmt.Errorf("sync failed: %w", err)
	}

	if err := db.UpdateSyncStatus(database, scope.Account, models.SyncStatusIdle, nil); err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	if err := db.UpdateSyncTime(database, scope.Account, time.Now()); err != nil {
		return fmt.Errorf("failed to update sync time: %w", err)
	}

	printSummary(result)
	return nil
}

func printSummary(result *sync.Result) {
	stats := result.Stats
	fmt.Printf("\n✓ Processed %d contacts\n", stats.RecordsProcessed)
	if stats.Inserts > 0 {
		fmt.Printf("  ✓ Created %d new contacts\n", stats.Inserts)
	}
	if stats.Updates > 0 {
		fmt.Printf("  ✓ Updated %d existing contacts\n", stats.Updates)
	}
	if stats.Deletes > 0 {
		fmt.Printf("  ✓ Removed %d inactive contacts\n", stats.Deletes)
	}
	if stats.Inserts == 0 && stats.Updates == 0 && stats.Deletes == 0 {
		fmt.Println("  ✓ No changes (all up to date)")
	}
	for _, failure := range result.Failures {
		fmt.Printf("  ✗ %s: %v\n", failure.SourceID, failure.Err)
	}
}

func splitRegions(s string) []string {
	var regions []string
	for _, r := range strings.Split(s, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
