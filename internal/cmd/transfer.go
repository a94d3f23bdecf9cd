package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/matthieukhl/orderdesk/internal/transfer"
	"github.com/spf13/cobra"
)

var transferFormat string

var exportCmd = &cobra.Command{
	Use:   "export <entity> <file>",
	Short: "Export customers, products or orders to CSV, JSON or YAML",
	Long: `Export every customer, product or order to a file. The format comes
from --format or the file extension. Use "-" to write to stdout.

Orders are written one row per item in CSV and as nested documents in
JSON and YAML.`,
	Example: `  orderdesk export customers customers.csv
  orderdesk export orders - --format json`,
	Args: cobra.ExactArgs(2),
	RunE: exportData,
}

var importCmd = &cobra.Command{
	Use:   "import <entity> <file>",
	Short: "Import customers or products from CSV, JSON or YAML",
	Long: `Import customers or products from a file. Every record is validated
like one entered by hand; invalid records are reported and skipped while
the valid ones are kept. Use "-" to read from stdin.`,
	Example: `  orderdesk import products catalog.yaml`,
	Args:    cobra.ExactArgs(2),
	RunE:    importData,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVar(&transferFormat, "format", "", "csv, json or yaml (default: from file extension)")
	importCmd.Flags().StringVar(&transferFormat, "format", "", "csv, json or yaml (default: from file extension)")
}

func exportData(cmd *cobra.Command, args []string) error {
	entity, err := transfer.ParseEntity(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	format, err := transfer.ResolveFormat(path, transferFormat)
	if err != nil {
		return err
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	if path == "-" {
		return s.app.Export(cmd.Context(), os.Stdout, format, entity)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.app.Export(cmd.Context(), f, format, entity); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("✅ Exported %ss to %s (%s)\n", entity, path, format)
	return nil
}

func importData(cmd *cobra.Command, args []string) error {
	entity, err := transfer.ParseEntity(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	format, err := transfer.ResolveFormat(path, transferFormat)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("🔄 Importing %ss from %s...\n", entity, path)
	res, err := s.app.Import(cmd.Context(), r, format, entity)
	if res != nil {
		printImportResult(os.Stdout, res)
	}
	return err
}

func printImportResult(w io.Writer, res *transfer.Result) {
	fmt.Fprintf(w, "✅ Imported %d %s(s)\n", len(res.Imported), res.Entity)
	if len(res.Rejected) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  Rejected %d record(s):\n", len(res.Rejected))
	for _, rej := range res.Rejected {
		fmt.Fprintf(w, "   • record %d: %s\n", rej.Record, rej.Reason)
	}
}
