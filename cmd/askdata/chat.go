package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spektr-org/askdata/intent"
)

const chatPrompt = "askdata> "

// NewChatCommand creates the interactive chat command.
func NewChatCommand() *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask follow-up questions interactively",
		Long: `Start an interactive session against one dataset. Each answer's metric,
dimension, aggregation and chart type carry into the next question, so
"total sales by region" can be followed by "now as a pie chart".

Dot-commands:
  .help      Show help
  .columns   List dataset columns
  .session   Show the session id
  .reset     Forget the previous question
  .quit      Exit (also .exit, Ctrl-D)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := getConfig(ctx)
			logger := getLogger(ctx)

			view, id, err := loadView(ctx, cfg, logger, &data)
			if err != nil {
				return err
			}

			s := &chatSession{
				id:       uuid.NewString(),
				answerer: newAnswerer(cfg, logger, view, cmd.OutOrStdout()),
			}
			logger.Debug("chat session started", slog.String("session", s.id), slog.String("source", id))
			return runChatREPL(ctx, s, id, view.Columns())
		},
	}
	data.register(cmd)
	return cmd
}

// ============================================================================
// SESSION: one conversation, context carried between turns
// ============================================================================

type chatSession struct {
	id       string
	answerer *answerer
	prev     *intent.Context
	turns    int
}

// handle processes one input line. It reports false when the session should
// end. Question errors are printed rather than returned so one failed
// fallback call does not end the session.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	out := s.answerer.out
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	if strings.HasPrefix(line, ".") {
		switch strings.ToLower(line) {
		case ".quit", ".exit":
			return false
		case ".help":
			printChatHelp(out)
		case ".columns":
			_, _ = fmt.Fprintln(out, strings.Join(s.answerer.view.Columns(), ", "))
		case ".session":
			_, _ = fmt.Fprintf(out, "Session %s, %d questions asked.\n", s.id, s.turns)
		case ".reset":
			s.prev = nil
			_, _ = fmt.Fprintln(out, "Context cleared.")
		default:
			_, _ = fmt.Fprintf(out, "Unknown command: %s (type .help)\n", line)
		}
		return true
	}

	s.turns++
	resp, err := s.answerer.ask(ctx, line, s.prev)
	if err != nil {
		s.answerer.logger.Warn("question failed", slog.String("session", s.id), slog.Int("turn", s.turns), slog.String("error", err.Error()))
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		return true
	}
	if resp != nil {
		next := resp.Context
		s.prev = &next
	}
	_, _ = fmt.Fprintln(out)
	return true
}

func printChatHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `Ask a question about the dataset, for example:
  total sales by region
  which product has the highest revenue
  now as a pie chart

  .columns   List dataset columns
  .session   Show the session id
  .reset     Forget the previous question
  .quit      Exit
`)
}

// printBanner introduces the session. The session id ties the transcript to
// the debug log.
func (s *chatSession) printBanner(source string) {
	out := s.answerer.out
	view := s.answerer.view
	_, _ = fmt.Fprintln(out, ui.Title.Render("askdata chat: "+source))
	_, _ = fmt.Fprintln(out, ui.Help.Render(fmt.Sprintf("session %s | %d rows, %d columns. Type .help for help.", s.id, view.Len(), len(view.Columns()))))
}

// ============================================================================
// REPL
// ============================================================================

func runChatREPL(ctx context.Context, s *chatSession, id string, columns []string) error {
	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".askdata_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newChatCompleter(columns),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s.printBanner(id)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if !s.handle(ctx, line) {
			break
		}
	}
	return nil
}

// newChatCompleter completes dot-commands and column names.
func newChatCompleter(columns []string) *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(columns)+6)
	for _, c := range columns {
		items = append(items, readline.PcItem(c))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".columns"),
		readline.PcItem(".session"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
