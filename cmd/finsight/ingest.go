package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/finsight/internal/ingest"
	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/model"
)

var addTickerCmd = &cobra.Command{
	Use:   "add-ticker <TICKER>",
	Short: "Ingest annual filings for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")
		if depth == 0 {
			depth = cfg.DefaultDepth
		}

		ticker := strings.ToUpper(args[0])
		if err := middleware.ValidateTicker(ticker); err != nil {
			return err
		}
		if err := middleware.ValidateDepth(depth); err != nil {
			return err
		}

		return withApp(cmd, func(a *app) error {
			out := cmd.OutOrStdout()
			outcome := a.svc.AddTicker(cmd.Context(), ticker, depth, func(ev model.StreamEvent) {
				printEvent(out, ev)
			})
			if outcome.State != ingest.StateSuccess {
				return errors.New(outcome.Message)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(addTickerCmd)

	addTickerCmd.Flags().Int("depth", 0, "number of annual filings to ingest (default INGEST_DEFAULT_DEPTH)")
}
