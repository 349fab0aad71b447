package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/finsight/internal/service"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			printSessions(cmd.OutOrStdout(), a.svc.Sessions())
			return nil
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the messages of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if !a.svc.LoadSession(args[0]) {
				return fmt.Errorf("session %s not found", args[0])
			}
			for _, m := range a.svc.Messages() {
				printMessage(cmd.OutOrStdout(), m)
			}
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return a.svc.DeleteSession(cmd.Context(), args[0])
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write the transcript of a session to a report file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.ExportDir
		}

		return withApp(cmd, func(a *app) error {
			if !a.svc.LoadSession(args[0]) {
				return fmt.Errorf("session %s not found", args[0])
			}
			path, err := service.NewExporter(dir).Export(a.svc)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd, exportCmd)

	exportCmd.Flags().String("dir", "", "output directory (default EXPORT_DIR)")
}

// withApp runs fn against a freshly wired app that logs to the log file.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
