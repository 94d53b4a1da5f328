// ABOUTME: CLI commands for sync status and queue management.
// ABOUTME: Supports status, now, retry, and clear operations.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	syncmgr "github.com/harperreed/lift/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Manage the pending sync queue",
	Long: `Manage the queue of workout actions awaiting delivery.

Actions taken offline are queued locally and delivered to the server
exactly once, in the order you took them. The queue drains automatically;
these commands are for inspecting it and for manual intervention.

COMMANDS:

  status    Show connectivity, queue size, and last sync time
  now       Re-probe the server and force an immediate drain
  retry     Re-arm items that exhausted their retries
  clear     Drop every queued item (destructive)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncStatusCmd.RunE(cmd, args)
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		printStatus()
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Force an immediate sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := svc.SyncNow(cmd.Context())
		switch {
		case errors.Is(err, syncmgr.ErrOffline):
			color.Yellow("⚠ Server unreachable — queued actions kept for later")
			return nil
		case errors.Is(err, syncmgr.ErrAlreadySyncing):
			color.Yellow("⚠ A sync is already in progress")
			return nil
		case err != nil:
			return fmt.Errorf("sync failed: %w", err)
		}

		color.Green("✓ Sync complete")
		printStatus()
		return nil
	},
}

var syncRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-arm permanently failed items and sync",
	Long: `Reset the retry counters of items that reached the retry ceiling,
then run a drain. Use after fixing whatever made them fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.RetryFailed(cmd.Context()); err != nil &&
			!errors.Is(err, syncmgr.ErrAlreadySyncing) {
			return fmt.Errorf("retry failed: %w", err)
		}
		printStatus()
		return nil
	},
}

var syncClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every queued item (destructive)",
	Long: `Drop every queued item, synced or not.

Actions that have not reached the server yet are lost. Use only to
recover from a permanently stuck queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.ClearQueue(); err != nil {
			return fmt.Errorf("failed to clear queue: %w", err)
		}
		color.Green("✓ Queue cleared")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := stateStore.Session()
		if sess != nil {
			color.Cyan("Session: %s (%s)", sess.Name, sess.ID)
			if sess.IsPaused() {
				fmt.Println("  paused")
			}
			if sess.IsOffline {
				fmt.Println("  started offline")
			}
		} else {
			fmt.Println("No active session")
		}
		printStatus()
		return nil
	},
}

func printStatus() {
	snap := stateStore.Snapshot()

	if snap.IsOnline {
		color.Green("Online (%s)", snap.ConnectionQuality)
	} else {
		color.Red("Offline")
	}
	fmt.Printf("Pending: %d\n", snap.PendingSyncCount)
	if snap.IsSyncing {
		fmt.Println("Syncing…")
	}
	if !snap.LastSyncTime.IsZero() {
		fmt.Printf("Last sync: %s\n", snap.LastSyncTime.Local().Format("2006-01-02 15:04:05"))
	}
	if snap.SyncError != "" {
		color.Red("Sync error: %s", snap.SyncError)
	}
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRetryCmd)
	syncCmd.AddCommand(syncClearCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
