package cli

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/notation"
)

var (
	runReplay   bool
	runInterval time.Duration
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [keys...]",
	Short: "Turn layers headlessly and print the result",
	Long: `Submit one key per argument, waiting for each turn to finish before
the next, then print the slot table.

Each argument is a single key: q w e a s d z x c, or the upper case form
to turn the other way.

Examples:
  cubesim run q d Z
  cubesim run --replay q w e`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runReplay, "replay", false, "Replay the history after the keys")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Tick interval (default: from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", time.Minute, "Give up after this long")
	rootCmd.AddCommand(runCmd)
}

func parseKeyArgs(args []string) ([]cubesim.Move, error) {
	moves := make([]cubesim.Move, 0, len(args))
	for _, arg := range args {
		if utf8.RuneCountInString(arg) != 1 {
			return nil, fmt.Errorf("%w: %q is not a single key", cubesim.ErrUnknownKey, arg)
		}
		r, _ := utf8.DecodeRuneInString(arg)
		m, err := cubesim.ParseKey(r)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	moves, err := parseKeyArgs(args)
	if err != nil {
		return err
	}

	interval := runInterval
	if interval <= 0 {
		interval = cfg.TickInterval
	}

	sess, err := openSession("run", logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	go sess.puzzle.Run(ctx, interval)

	for _, m := range moves {
		if err := sess.puzzle.WaitIdle(ctx); err != nil {
			return err
		}
		if !sess.puzzle.Submit(m, cubesim.SourceLive) {
			return fmt.Errorf("move %s was not accepted", m.Notation())
		}
	}
	if err := sess.puzzle.WaitIdle(ctx); err != nil {
		return err
	}

	history := sess.puzzle.History()

	if runReplay {
		if !sess.puzzle.RequestReplay() {
			return errors.New("replay could not start")
		}
		if err := sess.puzzle.WaitIdle(ctx); err != nil {
			return err
		}
	}

	table := sess.puzzle.Table()
	fmt.Printf("Moves:  %s\n", cubesim.FormatMoves(history))
	if net := notation.Simplify(history); len(net) != len(history) {
		fmt.Printf("Net:    %s\n", cubesim.FormatMoves(net))
	}
	if runReplay {
		fmt.Printf("Replay: %d moves undone\n", len(history))
	}
	fmt.Println()
	fmt.Print(table.String())
	fmt.Println()
	fmt.Printf("Solved: %v\n", table.IsSolved())
	if id := sess.SessionID(); id != "" {
		fmt.Printf("Session: %s\n", id)
	}
	return nil
}
