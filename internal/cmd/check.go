package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the database connection and schema",
	Long: `Pings the configured database, reports the applied schema version
and prints how many rows each table holds. Use it to verify a config
file or a freshly migrated database.`,
	Args: cobra.NoArgs,
	RunE: checkDatabase,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Second, "How long to wait for the database")
}

func checkDatabase(cmd *cobra.Command, args []string) error {
	s, err := connect()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	fmt.Printf("🔍 Checking %s database...\n", s.db.Driver())
	if err := s.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}
	fmt.Println("✅ Database connected successfully")

	version, dirty, err := s.db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	switch {
	case version == 0:
		fmt.Println("📭 No schema yet")
		fmt.Println("💡 Try running: orderdesk setup")
		return nil
	case dirty:
		fmt.Printf("⚠️  Schema version %d is dirty, a migration failed halfway\n", version)
		return nil
	default:
		fmt.Printf("📋 Schema version %d\n", version)
	}

	if err := s.start(); err != nil {
		return err
	}
	counts, err := s.app.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Println(strings.Repeat("─", 32))
	for _, table := range []string{"customers", "products", "orders", "order_items"} {
		fmt.Printf("   %-12s %8d\n", table, counts[table])
	}
	return nil
}
