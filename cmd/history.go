package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/safepath/safepath/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect route request history",
	Long:  "Commands for listing and viewing recorded route requests.",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded route requests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		recs, err := st.ListRoutes(ctx, store.RouteFilter{
			Status: store.RouteStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No routes found.")
			return nil
		}

		formatRouteList(os.Stdout, recs)
		return nil
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <route-id>",
	Short: "Show full details of a recorded route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetRoute(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	historyListCmd.Flags().String("status", "", "filter by status (ok, no_path, provider_unavailable, error)")
	historyListCmd.Flags().Int("limit", 50, "max number of routes to display")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// formatRouteList writes a tabular list of route records to w.
func formatRouteList(out io.Writer, recs []store.RouteRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFROM\tTO\tSTATUS\tLENGTH\tSAFETY\tCACHE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t--\t------\t------\t------\t-----\t-------")

	for _, r := range recs {
		length, safetyScore := "", ""
		if r.Status == store.RouteStatusOK {
			length = fmt.Sprintf("%.0fm", r.SafestLen)
			safetyScore = fmt.Sprintf("%.2f", r.SafestScore)
		}

		cache := ""
		if r.CacheHit {
			cache = "hit"
		}

		_, _ = fmt.Fprintf(w, "%s\t%.4f,%.4f\t%.4f,%.4f\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.OriginLon, r.OriginLat,
			r.DestLon, r.DestLat,
			r.Status,
			length,
			safetyScore,
			cache,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
