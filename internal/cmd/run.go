package cmd

import (
	"fmt"

	"github.com/matthieukhl/orderdesk/internal/server"
	"github.com/spf13/cobra"
)

var runAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Orderdesk HTTP API",
	Long: `Start the Orderdesk HTTP API which provides:
- CRUD endpoints for customers, products and orders
- Analytics reports under /api/analytics
- CSV, JSON and YAML import and export`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Orderdesk Starting...")

	fmt.Println("🔌 Connecting to database...")
	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("✅ Database ready (%s)\n", s.db.Driver())

	addr := s.cfg.Server.Addr
	if runAddr != "" {
		addr = runAddr
	}

	srv := server.NewServer(s.app, s.logger)

	fmt.Printf("🌐 Starting server on %s...\n", addr)
	if err := srv.Start(cmd.Context(), addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}
