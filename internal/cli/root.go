// Package cli wires the sweetshop command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sweetshop",
	Short: "Sweet shop API server and client",
	Long: `sweetshop runs the sweet shop REST API and talks to a running instance.

	sweetshop server
	sweetshop admin create --email admin@example.com --password s3cret
	sweetshop login --email ada@example.com --password s3cret
	sweetshop sweets list
`,
	SilenceUsage: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
