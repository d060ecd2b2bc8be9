package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the spool and route events as they arrive",
	Long: `Drain the spool, then watch the spool directory and route each new
event file as the Lace task manager drops it in.

Runs until interrupted. Events that fail to parse or route are reported
on stderr and left unrouted in the spool.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil || Spool == nil || Watcher == nil {
			return fmt.Errorf("spool watcher not initialized")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Events already waiting are routed before the watch starts.
		pending, err := Spool.Pending()
		if err != nil {
			return fmt.Errorf("listing pending events: %w", err)
		}
		for _, entry := range pending {
			if err := routeSpoolFile(ctx, entry.Path); err != nil {
				fmt.Fprintf(os.Stderr, "lace-notify: %v\n", err)
			}
		}

		fmt.Printf("Watching %s for events...\n", Spool.Dir())

		err = Watcher.Watch(ctx, func(path string) error {
			return routeSpoolFile(ctx, path)
		}, func(err error) {
			fmt.Fprintf(os.Stderr, "lace-notify: %v\n", err)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// routeSpoolFile routes one spool file and marks it routed on success.
// Already-routed files are ignored; the watcher sees its own MarkRouted
// rewrite as a fresh write event.
func routeSpoolFile(ctx context.Context, path string) error {
	routed, err := Spool.Routed(path)
	if err != nil {
		return err
	}
	if routed {
		return nil
	}

	event, err := Spool.ReadEvent(path)
	if err != nil {
		return err
	}

	report, err := Orchestrator.HandleEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("routing %s: %w", path, err)
	}
	if err := Spool.MarkRouted(path); err != nil {
		return fmt.Errorf("marking %s routed: %w", path, err)
	}

	return printReport(event, report)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
