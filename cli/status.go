// ABOUTME: Status CLI command
// ABOUTME: Shows sync state, contact counts, and groups for an account
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"dirsync/db"
)

// StatusCommand prints the sync state and local mirror counts.
func StatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	account := fs.String("account", envOr("DIRSYNC_ACCOUNT", "default"), "Local account name")
	_ = fs.Parse(args)

	state, err := db.GetSyncState(database, *account)
	if err != nil {
		return err
	}

	count, err := db.CountContacts(database, *account)
	if err != nil {
		return err
	}

	groups, err := db.ListGroups(database, *account)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Account:\t%s\n", *account)
	if state == nil {
		fmt.Fprintf(w, "Status:\tnever synced\n")
	} else {
		fmt.Fprintf(w, "Status:\t%s\n", state.Status)
		if state.LastSyncTime != nil {
			fmt.Fprintf(w, "Last sync:\t%s\n", state.LastSyncTime.Format("2006-01-02 15:04:05"))
		}
		if state.ErrorMessage != nil {
			fmt.Fprintf(w, "Last error:\t%s\n", *state.ErrorMessage)
		}
	}
	fmt.Fprintf(w, "Contacts:\t%d\n", count)
	fmt.Fprintf(w, "Groups:\t%d\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(w, "  %s\t%s\n", g.Title, g.ID)
	}
	return w.Flush()
}
