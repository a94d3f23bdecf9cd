package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matthieukhl/orderdesk/internal/analyze"
	"github.com/spf13/cobra"
)

var (
	analyzeTop  int
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [kind]",
	Short: "Summaries and rankings over all orders",
	Long: `Analyze the order history. Without a kind every section is printed.

Available kinds:
- summary: counts, revenue and average order value
- top-customers: customers with the most orders
- top-products: products by quantity sold
- daily: orders and revenue per day
- monthly: revenue per month
- network: customers who bought the same products

Cancelled orders are left out of revenue and rankings.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: analyze.Kinds,
	RunE:      runAnalysis,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "Ranking size (default analysis.top_n)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print JSON instead of tables")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	kinds := analyze.Kinds
	if len(args) == 1 {
		kind := strings.ToLower(args[0])
		if !analyze.IsKind(kind) {
			return fmt.Errorf("unknown analysis %q, expected one of: %s", args[0], strings.Join(analyze.Kinds, ", "))
		}
		kinds = []string{kind}
	}
	if analyzeTop < 0 {
		return fmt.Errorf("--top must not be negative, got %d", analyzeTop)
	}

	s, err := openApp()
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.app.Analyze(cmd.Context(), analyzeTop)
	if err != nil {
		return err
	}

	if analyzeJSON {
		if len(kinds) == 1 {
			section, err := report.Section(kinds[0])
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, section)
		}
		return printJSON(os.Stdout, report)
	}

	for i, kind := range kinds {
		if i > 0 {
			fmt.Println()
		}
		if err := printSection(os.Stdout, report, kind); err != nil {
			return err
		}
	}
	return nil
}

func printSection(w io.Writer, r *analyze.Report, kind string) error {
	switch kind {
	case analyze.KindSummary:
		fmt.Fprintln(w, "📊 Summary")
		return printSummary(w, r.Summary)
	case analyze.KindTopCustomers:
		fmt.Fprintln(w, "👥 Top customers")
		return printRanking(w, "CUSTOMER\tORDERS\tREVENUE", len(r.TopCustomers), func(i int) string {
			c := r.TopCustomers[i]
			return fmt.Sprintf("%s\t%d\t%s", c.Name, c.Orders, money(c.Revenue))
		})
	case analyze.KindTopProducts:
		fmt.Fprintln(w, "📦 Top products")
		return printRanking(w, "PRODUCT\tQTY\tORDERS\tREVENUE", len(r.TopProducts), func(i int) string {
			p := r.TopProducts[i]
			return fmt.Sprintf("%s\t%d\t%d\t%s", p.Name, p.Quantity, p.Orders, money(p.Revenue))
		})
	case analyze.KindDaily:
		fmt.Fprintln(w, "📅 Orders by day")
		return printPeriods(w, r.Daily)
	case analyze.KindMonthly:
		fmt.Fprintln(w, "🗓️  Revenue by month")
		return printPeriods(w, r.Monthly)
	case analyze.KindNetwork:
		fmt.Fprintln(w, "🔗 Customers with common products")
		return printRanking(w, "CUSTOMER\tCUSTOMER\tCOMMON PRODUCTS", len(r.Network), func(i int) string {
			l := r.Network[i]
			return fmt.Sprintf("%s\t%s\t%d", l.NameA, l.NameB, l.Weight)
		})
	default:
		_, err := r.Section(kind)
		return err
	}
}

func printSummary(w io.Writer, s analyze.Summary) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "   Customers:\t%d\n", s.Customers)
	fmt.Fprintf(tw, "   Products:\t%d\n", s.Products)
	fmt.Fprintf(tw, "   Orders:\t%d (%d cancelled)\n", s.Orders, s.CancelledOrders)
	fmt.Fprintf(tw, "   Items sold:\t%d\n", s.ItemsSold)
	fmt.Fprintf(tw, "   Revenue:\t%s\n", money(s.Revenue))
	fmt.Fprintf(tw, "   Average order:\t%s\n", money(s.AverageOrder))
	if s.FirstOrder != nil && s.LastOrder != nil {
		fmt.Fprintf(tw, "   Period:\t%s .. %s\n", stamp(*s.FirstOrder), stamp(*s.LastOrder))
	}
	return tw.Flush()
}

func printRanking(w io.Writer, header string, n int, row func(i int) string) error {
	if n == 0 {
		fmt.Fprintln(w, "   📭 Nothing to show")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "   #\t%s\n", header)
	for i := 0; i < n; i++ {
		fmt.Fprintf(tw, "   %d\t%s\n", i+1, row(i))
	}
	return tw.Flush()
}

func printPeriods(w io.Writer, periods []analyze.PeriodStat) error {
	if len(periods) == 0 {
		fmt.Fprintln(w, "   📭 Nothing to show")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "   PERIOD\tORDERS\tITEMS\tREVENUE")
	for _, p := range periods {
		fmt.Fprintf(tw, "   %s\t%d\t%d\t%s\n", p.Period, p.Orders, p.Items, money(p.Revenue))
	}
	return tw.Flush()
}
