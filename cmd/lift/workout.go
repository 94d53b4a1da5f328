// ABOUTME: CLI commands for the workout session lifecycle.
// ABOUTME: Every command works offline; captured actions sync later.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/lift/internal/workout"
)

var (
	setWeight float64
	setReps   int
	endNotes  string
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a workout session",
	Long: `Start a new workout session.

Works with or without connectivity. Offline sessions get a placeholder id
that is reconciled with the server id once the session syncs.

Example:
  lift start "Leg Day"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.StartWorkout(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to start workout: %w", err)
		}

		color.Green("✓ Started %q", args[0])
		fmt.Printf("  Session: %s\n", res.Session.ID)
		if res.Offline {
			color.Yellow("⚠ Offline — will sync when connectivity returns")
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log <exercise-id> <name>",
	Short: "Add an exercise to the active session",
	Long: `Add an exercise log to the active workout session.

Examples:
  lift log ex-squat "Back Squat"
  lift log ex-bench "Bench Press"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := stateStore.Session()
		if sess == nil {
			return fmt.Errorf("no active session - run 'lift start' first")
		}

		res, err := svc.LogExercise(cmd.Context(), sess.ID, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to log exercise: %w", err)
		}

		color.Green("✓ Logged %s", args[1])
		fmt.Printf("  Log: %s\n", res.Log.ID)
		if res.Offline {
			color.Yellow("⚠ Offline — will sync when connectivity returns")
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <exercise-id>",
	Short: "Record a completed set",
	Long: `Record a completed set against an exercise in the active session.

Example:
  lift set ex-squat --weight 100 --reps 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := stateStore.Session()
		if sess == nil {
			return fmt.Errorf("no active session - run 'lift start' first")
		}
		l := stateStore.LogForExercise(args[0])
		if l == nil {
			return fmt.Errorf("no log for %s - run 'lift log' first", args[0])
		}

		res, err := svc.CompleteSet(cmd.Context(), sess.ID, l.ID, args[0], workout.SetData{
			Weight:    setWeight,
			Reps:      setReps,
			Completed: true,
		})
		if err != nil {
			return fmt.Errorf("failed to record set: %w", err)
		}

		color.Green("✓ Set %d: %.1f x %d", res.Set.SetNumber, setWeight, setReps)
		if res.IsPR {
			color.Magenta("★ New personal record!")
		}
		if res.Offline {
			color.Yellow("⚠ Offline — will sync when connectivity returns")
		}
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return togglePause(cmd, true)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return togglePause(cmd, false)
	},
}

func togglePause(cmd *cobra.Command, paused bool) error {
	sess := stateStore.Session()
	if sess == nil {
		return fmt.Errorf("no active session")
	}

	elapsed := int(time.Since(sess.StartTime).Seconds()) - sess.TotalPausedSec
	res, err := svc.TogglePause(cmd.Context(), sess.ID, paused, elapsed)
	if err != nil {
		return fmt.Errorf("failed to toggle pause: %w", err)
	}

	if paused {
		color.Green("✓ Paused")
	} else {
		color.Green("✓ Resumed")
	}
	if res.Offline {
		color.Yellow("⚠ Offline — will sync when connectivity returns")
	}
	return nil
}

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "Complete the active session",
	Long: `Complete the active workout session.

The local session is cleared immediately; the completion syncs in the
background if the server is unreachable.

Example:
  lift end --notes "strong day"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := stateStore.Session()
		if sess == nil {
			return fmt.Errorf("no active session")
		}

		duration := int(time.Since(sess.StartTime).Seconds()) - sess.TotalPausedSec
		res, err := svc.EndWorkout(cmd.Context(), sess.ID, workout.CompletionData{
			DurationSec: duration,
			Notes:       endNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to end workout: %w", err)
		}

		color.Green("✓ Completed %q (%dm)", sess.Name, duration/60)
		if res.Offline {
			color.Yellow("⚠ Offline — will sync when connectivity returns")
		}
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := stateStore.Session()
		if sess == nil {
			return fmt.Errorf("no active session")
		}

		res, err := svc.CancelWorkout(cmd.Context(), sess.ID)
		if err != nil {
			return fmt.Errorf("failed to cancel workout: %w", err)
		}

		color.Green("✓ Cancelled %q", sess.Name)
		if res.Offline {
			color.Yellow("⚠ Offline — will sync when connectivity returns")
		}
		return nil
	},
}

func init() {
	setCmd.Flags().Float64Var(&setWeight, "weight", 0, "weight used")
	setCmd.Flags().IntVar(&setReps, "reps", 0, "repetitions completed")
	_ = setCmd.MarkFlagRequired("reps")

	endCmd.Flags().StringVar(&endNotes, "notes", "", "workout notes")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(cancelCmd)
}
