package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesdash/internal/dashboard"
	"salesdash/internal/engine"
	"salesdash/internal/models"
)

func (a *App) newSummaryCmd() *cobra.Command {
	var (
		data      string
		hourOrder string
		asJSON    bool
		sel       engine.Selection
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard figures for one selection",
		Long: `summary runs the filter and aggregation once and prints the summary cards
and both groupings. A filter flag that is not given selects every value; a flag
given with an empty value is an empty selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if data != "" {
				cfg.Dataset.Path = data
			}
			if hourOrder != "" {
				cfg.Dashboard.HourOrder = hourOrder
			}
			a.newLogger("warn")
			if err := cfg.Validate(); err != nil {
				return err
			}

			session, err := openSession(cfg)
			if err != nil {
				return err
			}

			all := session.Options()
			if !cmd.Flags().Changed("city") {
				sel.Cities = all.Cities
			}
			if !cmd.Flags().Changed("customer-type") {
				sel.CustomerTypes = all.CustomerTypes
			}
			if !cmd.Flags().Changed("gender") {
				sel.Genders = all.Genders
			}

			snap, err := session.Apply(sel)
			if errors.Is(err, engine.ErrEmptySelection) {
				return fmt.Errorf("%s %s", dashboard.NotifyTitle, dashboard.NoResultsMessage)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Data())
			}
			return a.printSummary(snap.Data())
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "dataset file (overrides dataset.path)")
	cmd.Flags().StringVar(&hourOrder, "hour-order", "", `order of the by-hour grouping: "value" or "hour"`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringSliceVar(&sel.Cities, "city", nil, "cities to include (repeatable)")
	cmd.Flags().StringSliceVar(&sel.CustomerTypes, "customer-type", nil, "customer types to include (repeatable)")
	cmd.Flags().StringSliceVar(&sel.Genders, "gender", nil, "genders to include (repeatable)")

	return cmd
}

func (a *App) printSummary(d models.DashboardData) error {
	if d.Notification != nil {
		fmt.Fprintf(a.stdout, "%s %s\n\n", d.Notification.Title, d.Notification.Message)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total Sales:\t%s\n", d.Cards.TotalSales)
	fmt.Fprintf(w, "Average Sales:\t%s\n", d.Cards.AverageSales)
	fmt.Fprintf(w, "Average Rating:\t%s%s\n", d.Cards.AverageRating, d.Cards.Stars)

	fmt.Fprintln(w, "\nSales by Hour")
	for _, h := range d.Result.ByHour {
		fmt.Fprintf(w, "  %s\t%s\n", strconv.Itoa(h.Hour), dashboard.FormatCurrency(h.Total))
	}
	fmt.Fprintln(w, "\nSales by Product Line")
	for _, l := range d.Result.ByProductLine {
		fmt.Fprintf(w, "  %s\t%s\n", l.ProductLine, dashboard.FormatCurrency(l.Total))
	}
	return w.Flush()
}
