package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/ingest"
	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/service"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

const chatHelp = `commands:
  /new                    start a new chat
  /sessions               list saved sessions
  /load <n|id>            open a saved session
  /delete <n|id>          delete a saved session
  /add <TICKER> [depth]   ingest annual filings for a ticker
  /docs                   list active documents
  /focus [TICKER]         scope questions to a ticker, no argument clears
  /settings [key value]   show or change model, depth, creativity
  /export                 write the transcript to a report file
  /help                   show this help
  /quit                   leave
anything else is sent to the agent as a question`

var commandNames = []string{
	"/new", "/sessions", "/load", "/delete", "/add", "/docs",
	"/focus", "/settings", "/export", "/help", "/quit",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(true)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			log.Error("failed to start", zap.Error(err))
			return err
		}
		defer a.Close()

		r := &repl{
			svc:        a.svc,
			out:        cmd.OutOrStdout(),
			exporter:   service.NewExporter(cfg.ExportDir),
			depth:      cfg.DefaultDepth,
			closeDelay: cfg.IngestCloseDelay,
			logger:     log.Named("chat"),
		}
		return r.run(cmd.Context(), filepath.Join(cfg.DataDir, "history"))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// repl drives the conversation service from typed lines.
type repl struct {
	svc        *service.ConversationService
	out        io.Writer
	exporter   *service.Exporter
	depth      int
	closeDelay time.Duration
	logger     *logger.Logger
}

func (r *repl) run(ctx context.Context, historyPath string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string
		for _, c := range commandNames {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out
	})

	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o700); err != nil {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(r.out, "FinSight. Type /help for commands.")

	for {
		input, err := line.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := r.handle(ctx, input); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) prompt() string {
	if focus := r.svc.Focus(); focus != "" {
		return "[" + focus + "] > "
	}
	return "> "
}

// handle executes one input line and reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, input string) bool {
	if !strings.HasPrefix(input, "/") {
		r.ask(ctx, input)
		return false
	}

	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/new":
		r.svc.NewChat()
		fmt.Fprintln(r.out, "new chat")
	case "/sessions":
		printSessions(r.out, r.svc.Sessions())
	case "/load":
		r.load(args)
	case "/delete":
		r.delete(ctx, args)
	case "/add":
		r.addTicker(ctx, args)
	case "/docs":
		printDocuments(r.out, r.svc.Documents(), r.svc.Focus())
	case "/focus":
		r.focus(args)
	case "/settings":
		r.settings(args)
	case "/export":
		r.export()
	default:
		fmt.Fprintf(r.out, "unknown command %s, try /help\n", cmd)
	}
	return false
}

func (r *repl) ask(ctx context.Context, text string) {
	if err := middleware.ValidateQuery(text); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	fmt.Fprintln(r.out, "thinking...")
	msg, err := r.svc.SubmitQuery(ctx, text)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	printMessage(r.out, msg)
}

// resolveSession accepts a 1-based position in the session list or an id.
func (r *repl) resolveSession(args []string) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "expected one session number or id")
		return "", false
	}

	sessions := r.svc.Sessions()
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(sessions) {
			fmt.Fprintf(r.out, "no session %d\n", n)
			return "", false
		}
		return sessions[n-1].ID, true
	}
	return args[0], true
}

func (r *repl) load(args []string) {
	id, ok := r.resolveSession(args)
	if !ok {
		return
	}
	if !r.svc.LoadSession(id) {
		fmt.Fprintln(r.out, "session not found")
		return
	}
	for _, m := range r.svc.Messages() {
		printMessage(r.out, m)
	}
}

func (r *repl) delete(ctx context.Context, args []string) {
	id, ok := r.resolveSession(args)
	if !ok {
		return
	}
	if err := r.svc.DeleteSession(ctx, id); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	fmt.Fprintln(r.out, "deleted")
}

func (r *repl) addTicker(ctx context.Context, args []string) {
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintln(r.out, "usage: /add <TICKER> [depth]")
		return
	}

	ticker := strings.ToUpper(args[0])
	if err := middleware.ValidateTicker(ticker); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	depth := r.depth
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || middleware.ValidateDepth(n) != nil {
			fmt.Fprintln(r.out, "depth must be between 1 and 10")
			return
		}
		depth = n
	}

	fmt.Fprintf(r.out, "ingesting %s (%d years)\n", ticker, depth)
	outcome := r.svc.AddTicker(ctx, ticker, depth, func(ev model.StreamEvent) {
		printEvent(r.out, ev)
	})

	if outcome.State != ingest.StateSuccess {
		fmt.Fprintln(r.out, outcome.Message)
		return
	}

	// Keep the final progress visible for a moment before the prompt returns.
	select {
	case <-time.After(r.closeDelay):
	case <-ctx.Done():
	}
	printDocuments(r.out, r.svc.Documents(), r.svc.Focus())
}

func (r *repl) focus(args []string) {
	if len(args) == 0 {
		r.svc.SelectFocus("")
		fmt.Fprintln(r.out, "focus cleared")
		return
	}

	ticker := strings.ToUpper(args[0])
	if err := middleware.ValidateTicker(ticker); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.svc.SelectFocus(ticker)
	fmt.Fprintf(r.out, "context locked: %s\n", ticker)
}

func (r *repl) settings(args []string) {
	s := r.svc.Settings()
	if len(args) == 0 {
		fmt.Fprintf(r.out, "model=%s depth=%d creativity=%.2f\n", s.Model, s.SearchDepth, s.Creativity)
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(r.out, "usage: /settings <model|depth|creativity> <value>")
		return
	}

	switch args[0] {
	case "model":
		s.Model = args[1]
	case "depth":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(r.out, "depth must be a number")
			return
		}
		s.SearchDepth = n
	case "creativity":
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintln(r.out, "creativity must be a number")
			return
		}
		s.Creativity = f
	default:
		fmt.Fprintf(r.out, "unknown setting %s\n", args[0])
		return
	}

	if err := r.svc.UpdateSettings(s); err != nil {
		r.logger.Debug("settings rejected", zap.Error(err))
		fmt.Fprintln(r.out, "invalid settings")
		return
	}
	fmt.Fprintln(r.out, "settings saved")
}

func (r *repl) export() {
	path, err := r.exporter.Export(r.svc)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	if path == "" {
		fmt.Fprintln(r.out, "nothing to export")
		return
	}
	fmt.Fprintf(r.out, "report written to %s\n", path)
}
