// ABOUTME: Root Cobra command for lift CLI.
// ABOUTME: Opens the store, state, monitor, and sync manager per invocation.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/config"
	"github.com/harperreed/lift/internal/netmon"
	"github.com/harperreed/lift/internal/state"
	"github.com/harperreed/lift/internal/store"
	syncmgr "github.com/harperreed/lift/internal/sync"
	"github.com/harperreed/lift/internal/workout"
)

var (
	cfg        *config.Config
	db         *store.Store
	stateStore *state.Store
	monitor    *netmon.Monitor
	manager    *syncmgr.Manager
	svc        *workout.Service
)

var rootCmd = &cobra.Command{
	Use:   "lift",
	Short: "Offline-first workout tracker",
	Long: `Lift tracks workout sessions and keeps working with no connectivity.

Every action you take offline is captured locally and delivered to the
server exactly once, in order, when connectivity returns. Ids issued
locally while offline are reconciled with server ids automatically.

QUICK START:

  $ lift start "Leg Day"                 # Start a session (online or not)
  $ lift log ex-squat "Back Squat"       # Add an exercise to the session
  $ lift set ex-squat --weight 100 --reps 5
  $ lift pause                           # Pause the session
  $ lift resume                          # Resume it
  $ lift end --notes "strong day"        # Complete the session

SYNC:

  Queued actions drain automatically every 30 seconds while online, and
  immediately after connectivity returns.

  $ lift status           # Connectivity, queue size, last sync
  $ lift sync now         # Force an immediate drain
  $ lift sync retry       # Re-arm items that exhausted their retries
  $ lift sync clear       # Drop the queue (destructive)

MCP INTEGRATION:

  Run 'lift mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  Local data lives in a Badger store at ~/.local/share/lift/lift.db.
  Server and token come from ~/.config/lift/config.json or the
  LIFT_SERVER / LIFT_TOKEN environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err = store.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}

		stateStore = state.New(db)
		if err := stateStore.Load(); err != nil {
			return fmt.Errorf("failed to load offline state: %w", err)
		}

		client := api.NewClient(cfg.Server, cfg.Token)
		monitor = netmon.New(client, stateStore)
		manager = syncmgr.New(stateStore, db, client, monitor)
		svc = workout.NewService(stateStore, db, client, manager)

		// One probe up front so the first operation sees a real verdict.
		monitor.CheckConnectivity(cmd.Context())
		if cmd.Name() == "mcp" {
			monitor.Start(context.Background())
			manager.Start(context.Background())
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if manager != nil {
			manager.Stop()
		}
		if monitor != nil {
			monitor.Stop()
		}
		if db != nil {
			return db.Close()
		}
		return nil
	},
}
