package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/analysis"
	"github.com/SeamusWaldron/cubesim/internal/cube"
	"github.com/SeamusWaldron/cubesim/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the moves and final table of a recorded session",
	Long: `Show a recorded session. The session ID may be abbreviated to any
unique prefix. Without an argument the most recent session is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to list")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := storage.NewSessionRepository(db).List(historyLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tHOST\tMOVES\tDURATION\tSOLVED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.SessionID[:8],
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Host,
			s.MoveCount,
			formatDuration(s.DurationMs),
			formatSolved(s.Solved),
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	db, stateFile, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := storage.NewSessionRepository(db)

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		id = stateFile.Snapshot().LastSessionID
		if id == "" {
			return errors.New("no session recorded yet")
		}
	}

	s, err := findSession(sessions, id)
	if err != nil {
		return err
	}

	rows, err := storage.NewMoveRepository(db).GetBySession(s.SessionID)
	if err != nil {
		return err
	}

	summary, err := analysis.Summarize(s.SessionID, rows)
	if err != nil {
		return err
	}

	moves := make([]cubesim.Move, 0, len(rows))
	for _, row := range rows {
		m, err := row.ToMove()
		if err != nil {
			return fmt.Errorf("move %d: %w", row.Index, err)
		}
		moves = append(moves, m)
	}

	table := cube.Solved()
	if err := cube.ApplyMoves(&table, moves); err != nil {
		return err
	}

	fmt.Printf("Session:  %s\n", s.SessionID)
	fmt.Printf("Started:  %s\n", s.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("Host:     %s (%d frames per turn)\n", s.Host, s.FramesPerTurn)
	fmt.Printf("Duration: %s\n", formatDuration(s.DurationMs))
	fmt.Printf("Moves:    %d", summary.TotalMoves)
	if len(summary.SourceCounts) > 0 {
		parts := make([]string, 0, len(summary.SourceCounts))
		for _, src := range []cubesim.Source{cubesim.SourceLive, cubesim.SourceRemote, cubesim.SourceReplay} {
			if n := summary.SourceCounts[string(src)]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, src))
			}
		}
		fmt.Printf(" (%s)", strings.Join(parts, ", "))
	}
	fmt.Println()

	if summary.TotalMoves > 0 {
		fmt.Printf("Net:      %d moves after cancelling (%.0f%%)\n", summary.NetMoves, summary.Efficiency*100)
		fmt.Printf("Pace:     %.2f TPS, longest pause %s, %d pauses over %s\n",
			summary.TPS,
			time.Duration(summary.LongestPauseMs)*time.Millisecond,
			summary.PauseCount,
			time.Duration(analysis.DefaultPauseThresholdMs)*time.Millisecond,
		)
		fmt.Printf("Layers:   most used %s", summary.Profile.MostUsedFace)
		if top := summary.Profile.TopSequences(3); len(top) > 0 {
			pairs := make([]string, len(top))
			for i, sc := range top {
				pairs[i] = fmt.Sprintf("%s x%d", sc.Sequence, sc.Count)
			}
			fmt.Printf(", common pairs %s", strings.Join(pairs, ", "))
		}
		fmt.Println()
	}
	fmt.Println()

	if len(moves) > 0 {
		fmt.Println(cubesim.FormatMoves(moves))
		fmt.Println()
	}

	fmt.Print(table.String())
	fmt.Println()
	fmt.Printf("Solved: %v\n", table.IsSolved())
	return nil
}

// findSession resolves a full or abbreviated session ID.
func findSession(repo *storage.SessionRepository, id string) (*storage.Session, error) {
	s, err := repo.Get(id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	recent, err := repo.List(1000)
	if err != nil {
		return nil, err
	}
	var match *storage.Session
	for i := range recent {
		if strings.HasPrefix(recent[i].SessionID, id) {
			if match != nil {
				return nil, fmt.Errorf("session prefix %q is ambiguous", id)
			}
			match = &recent[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return match, nil
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return (time.Duration(*ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}

func formatSolved(solved *bool) string {
	switch {
	case solved == nil:
		return "-"
	case *solved:
		return "yes"
	default:
		return "no"
	}
}
