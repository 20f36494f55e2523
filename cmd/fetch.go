package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newFetchCmd creates the 'fetch' subcommand: one synchronous fetch through the
// same pipeline the server uses, printing the record as JSON.
func newFetchCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch trending topics once and print the record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			orch := appInstance.Orchestrator()
			orch.Trigger()
			snap, waitErr := orch.Await(ctx)

			// Close waits for the record write and tears down the browser.
			closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := appInstance.Close(closeCtx); err != nil {
				appInstance.Logger().Warn("close failed", zap.Error(err))
			}

			if waitErr != nil {
				return fmt.Errorf("fetch: %w", waitErr)
			}
			if !snap.Outcome.OK() {
				return fmt.Errorf("fetch failed: %s", snap.Outcome.Reason)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "    ")
			if err := enc.Encode(snap.Outcome.Record.Document()); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the fetch (0 uses the configured fetch timeout)")
	return cmd
}
