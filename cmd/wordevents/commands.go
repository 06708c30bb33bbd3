package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/wordevents/internal/app"
	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input"
	"github.com/dshills/wordevents/internal/input/source"
)

var (
	matchColor = color.New(color.FgGreen)
	missColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	dimColor   = color.New(color.Faint)
)

func newRunCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen to the terminal and dispatch typed words",
		Long: `run takes over the terminal and dispatches each typed word to its action.
Press Esc or Ctrl+C, or type a word bound to the quit action, to exit.
Logs written to stderr will overwrite the screen; set [logging] output = "file"
to keep them apart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := appOptions(cmd)
			opts.Watch = watch
			a, err := app.New(opts)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer a.Shutdown()

			term, err := source.NewTerminal()
			if err != nil {
				return fmt.Errorf("failed to create terminal: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ignoreQuit(a.Run(ctx, term))
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "rebind words when the configuration file changes")
	return cmd
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <word>...",
		Short: "Show which entry each word resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			var errs []error
			for _, word := range args {
				entry, ok, err := a.Resolve(word)
				switch {
				case err != nil:
					errorColor.Fprintf(out, "%q: %v\n", word, err)
					errs = append(errs, err)
				case ok:
					matchColor.Fprintf(out, "%q matches %s\n", word, entry.Matcher)
				default:
					missColor.Fprintf(out, "%q has no entry%s\n", word, didYouMean(a.Dictionary().Suggest(word, 3)))
				}
			}
			return errors.Join(errs...)
		},
	}
}

func didYouMean(suggestions []dictionary.Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}
	words := make([]string, len(suggestions))
	for i, s := range suggestions {
		words[i] = strconv.Quote(s.Word)
	}
	return "; did you mean " + strings.Join(words, ", ") + "?"
}

func newReplayCommand() *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "replay <text>",
		Short: "Type text through the word engine on a simulated clock",
		Long: fmt.Sprintf(`replay feeds each character of text to the word engine as a keystroke,
%s apart by default. A '%c' pauses past the digit interval, ending the
current word.`, app.DefaultReplayStep, app.WordBreak),
		Example: "  wordevents replay 'hi|bye'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			m, err := a.Replay(args[0], step)
			printSummary(cmd.OutOrStdout(), m)
			return callbackErrors(err)
		},
	}
	cmd.Flags().DurationVar(&step, "step", app.DefaultReplayStep, "pause between keystrokes")
	return cmd
}

// callbackErrors drops ErrQuit from a replay error, keeping any other
// joined errors.
func callbackErrors(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		if errors.Is(err, app.ErrQuit) {
			return nil
		}
		return err
	}
	var rest []error
	for _, e := range joined.Unwrap() {
		if !errors.Is(e, app.ErrQuit) {
			rest = append(rest, e)
		}
	}
	return errors.Join(rest...)
}

func printSummary(out io.Writer, m input.MetricsSnapshot) {
	dimColor.Fprintf(out, "%d keystrokes (%d accepted), %d words: %d matched, %d missed, %d errors\n",
		m.EventsTotal, m.AcceptedEvents, m.Dispatches, m.Matches, m.Misses, m.Errors)
}

func newWordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the bound words and patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			for _, e := range a.Dictionary().Entries() {
				fmt.Fprintf(out, "%-8s %s\n", kindOf(e.Matcher), e.Matcher)
			}
			return nil
		},
	}
}

func kindOf(m dictionary.Matcher) string {
	if m.IsPattern() {
		return "pattern"
	}
	return "word"
}
