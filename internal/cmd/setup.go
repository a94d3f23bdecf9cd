package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	seedCount int
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or upgrade the database schema",
	Long: `Applies every pending migration (customers, products, orders,
order_items) to the configured database.

With --drop-first the existing tables and data are removed before the
schema is created again. With --seed N the fresh database is filled with
N random customers, N products and about 2N orders.`,
	Args: cobra.NoArgs,
	RunE: setupDatabase,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables and data before migrating")
	setupCmd.Flags().IntVar(&seedCount, "seed", 0, "Populate with N random customers and products")
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	if seedCount < 0 {
		return fmt.Errorf("--seed must not be negative, got %d", seedCount)
	}

	fmt.Println("🔧 Setting up database...")

	s, err := connect()
	if err != nil {
		return err
	}
	defer s.Close()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := s.db.DropSchema(); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Applying migrations...")
	if err := s.db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if seedCount > 0 {
		if err := s.start(); err != nil {
			return err
		}
		fmt.Println("📊 Populating with sample data...")
		stats, err := seedSampleData(cmd.Context(), s.app, seedCount, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("   ✅ %d customers, %d products, %d orders (%d skipped for stock)\n",
			stats.Customers, stats.Products, stats.Orders, stats.Skipped)
	}

	fmt.Println("✅ Database setup complete!")
	return nil
}
