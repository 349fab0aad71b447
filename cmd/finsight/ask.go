package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/finsight/internal/middleware"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Long: `Ask one question and print the answer. The question is added to the
given session, or to a new session when none is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		ticker, _ := cmd.Flags().GetString("ticker")
		asJSON, _ := cmd.Flags().GetBool("json")

		question := strings.Join(args, " ")
		if err := middleware.ValidateQuery(question); err != nil {
			return err
		}

		return withApp(cmd, func(a *app) error {
			if sessionID != "" && !a.svc.LoadSession(sessionID) {
				return fmt.Errorf("session %s not found", sessionID)
			}
			if ticker != "" {
				ticker = strings.ToUpper(ticker)
				if err := middleware.ValidateTicker(ticker); err != nil {
					return err
				}
				a.svc.SelectFocus(ticker)
			}

			msg, err := a.svc.SubmitQuery(cmd.Context(), question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(msg)
			}
			printMessage(out, msg)
			if msg.Answer == nil {
				return errors.New("analysis failed")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("session", "", "continue the session with this id")
	askCmd.Flags().String("ticker", "", "scope the question to one ticker")
	askCmd.Flags().Bool("json", false, "print the agent message as JSON")
}
