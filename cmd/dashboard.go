package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"mufawter/internal/analytics"
	"mufawter/internal/api"
	"mufawter/internal/logger"
	"mufawter/internal/render"
	"mufawter/pkg/models"
)

// DashboardOutput is the --json form of the dashboard.
type DashboardOutput struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Criteria    analytics.Criteria     `json:"criteria"`
	Stats       *models.DashboardStats `json:"stats,omitempty"`
	Summary     analytics.Summary      `json:"summary"`
	Aggregation analytics.Aggregation  `json:"aggregation"`
	Insights    []analytics.Insight    `json:"insights"`
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show spending analytics and smart insights",
	Long: `Show the spending dashboard: server statistics, totals by category,
month (last 6), payment method and weekday, and smart insights such as the
month-over-month change, the top vendor and the busiest day.

All numbers except the server statistics are computed from the invoices
matching the filters.`,
	Example: `  mufawter dashboard
  mufawter dashboard --month 2 --payment mada
  mufawter dashboard --json > dashboard.json`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	addFilterFlags(dashboardCmd)
	dashboardCmd.Flags().Bool("json", false, "Print the dashboard as JSON")
	dashboardCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("dashboard")

	asJSON, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	criteria, err := readCriteria(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	stats, invoices, err := loadDashboard(ctx, client, criteria)
	if err != nil {
		return handleCommandError(err, "loading the dashboard", log)
	}

	labels := cfg.Labels()
	now := time.Now()
	output := DashboardOutput{
		GeneratedAt: now,
		Criteria:    criteria,
		Stats:       stats,
		Summary:     analytics.Summarize(invoices),
		Aggregation: analytics.Aggregate(invoices, labels),
		Insights:    analytics.Insights(invoices, now, labels),
	}

	if asJSON {
		return outputJSON(output, "", log)
	}

	out := cmd.OutOrStdout()
	if stats != nil {
		fmt.Fprintln(out, render.Title("Overview"))
		fmt.Fprintln(out, render.Stats(*stats, labels))
	} else {
		fmt.Fprintln(out, render.Warning("Server statistics are unavailable; showing local numbers only."))
	}

	fmt.Fprintln(out, render.Title("Summary"))
	fmt.Fprintln(out, render.Summary(output.Summary, labels))

	sections := []struct {
		title  string
		key    string
		groups []analytics.Group
	}{
		{"By category", "Category", output.Aggregation.Categories},
		{"By month", "Month", output.Aggregation.Months},
		{"By payment method", "Payment", output.Aggregation.Payments},
		{"By weekday", "Day", output.Aggregation.Weekdays},
	}
	for _, s := range sections {
		fmt.Fprintln(out, render.Title(s.title))
		fmt.Fprintln(out, render.Groups(s.key, s.groups))
	}

	fmt.Fprintln(out, render.Title("Smart insights"))
	fmt.Fprint(out, render.Insights(output.Insights))
	return nil
}

// loadDashboard fetches the server statistics and the invoice list
// concurrently. Statistics are optional: their failure is logged and stats
// is nil.
func loadDashboard(ctx context.Context, client *api.Client, criteria analytics.Criteria) (*models.DashboardStats, []models.Invoice, error) {
	log := logger.WithComponent("dashboard")

	var (
		stats    *models.DashboardStats
		invoices []models.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := client.DashboardStats(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard statistics unavailable")
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		_, filtered, err := fetchInvoices(gctx, client, criteria, log)
		if err != nil {
			return err
		}
		invoices = filtered
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stats, invoices, nil
}
