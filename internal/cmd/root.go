package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/matthieukhl/orderdesk/internal/app"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "Orderdesk - customers, products and orders in one place",
	Long: `Orderdesk keeps track of customers, the product catalog and the
orders placed against it. Stock is reserved when an order is placed and
returned when it is cancelled or deleted.

Use the CLI commands for day to day work, or start the HTTP API with
"orderdesk run".`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./config.yaml, ./deploy/config.yaml, ~/.orderdesk/config.yaml)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if app.IsUserError(err) || ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "❌ %s\n", app.Message(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
