// Command demo walks through the TradeMate support platform end to end:
// onboarding two partners, answering support queries, and printing the
// analytics, dashboard, privacy, market analysis, and ROI reports.
//
// The demo runs against an in-memory store by default, so every run
// starts from an empty platform.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/trademate/supportdesk/pkg/advice"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/platform"
	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/storage/memory"
	"github.com/trademate/supportdesk/pkg/storage/sqlite"
)

var Version = "dev"

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var sqlitePath string

	root := &cobra.Command{
		Use:     "demo",
		Short:   "TradeMate AI support SaaS platform demo",
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init("", "WARN", "text")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), sqlitePath)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := platform.New(store, platform.Config{BcryptCost: bcrypt.MinCost})
			return newDemo(svc, cmd.OutOrStdout()).run(cmd.Context())
		},
	}
	root.Flags().StringVar(&sqlitePath, "sqlite", "", "persist the demo in a SQLite database at this path")

	root.AddCommand(plansCmd())
	root.AddCommand(adviseCmd())
	return root
}

func plansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the platform tiers and their pricing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := rupeePrinter()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIER\tMONTHLY\tINCLUDED\tOVERAGE\tRPM")
			for _, plan := range platform.Plans() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					plan.Tier,
					p.Sprintf("₹%d", plan.MonthlyBaseCost),
					p.Sprintf("%d", plan.IncludedInteractions),
					p.Sprintf("₹%d", plan.OveragePerInteraction),
					plan.RequestsPerMinute,
				)
			}
			return tw.Flush()
		},
	}
}

func adviseCmd() *cobra.Command {
	var (
		lang   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "advise [query]",
		Short: "Answer a single financial query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := advice.Respond(args[0], lang)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Intent: %s (%s)\n\n%s\n", a.Intent, a.Language, a.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "language", "l", "Hindi", "response language (name, BCP 47 tag or Accept-Language list)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func openStore(ctx context.Context, sqlitePath string) (storage.Store, error) {
	if sqlitePath == "" {
		return memory.New(0), nil
	}
	s, err := sqlite.Open(ctx, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	return s, nil
}
