package cli

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/notation"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Interactive terminal puzzle",
	Long: `Start an interactive TUI showing the puzzle as three 3x3 layers.

Keyboard shortcuts:
  q w e   - Turn the x = -1 / 0 / +1 layers
  a s d   - Turn the z = -1 / 0 / +1 layers
  z x c   - Turn the y = -1 / 0 / +1 layers
  Shift   - Hold with a layer key to turn it the other way
  r       - Replay: undo every move, newest first
  Esc     - Quit

Keys pressed while a layer is turning or a replay runs are ignored.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	homeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	movedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	layerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

// Messages
type tickMsg time.Time

// Model
type playModel struct {
	sess     *puzzleSession
	interval time.Duration

	frame  cubesim.Frame
	notice string

	// Frame rate
	fps        float64
	fpsFrames  int
	fpsStarted time.Time

	quitting bool
}

func newPlayModel(sess *puzzleSession, interval time.Duration) *playModel {
	return &playModel{
		sess:       sess,
		interval:   interval,
		frame:      sess.puzzle.Frame(),
		fpsStarted: time.Now(),
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *playModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "r":
			if m.sess.puzzle.RequestReplay() {
				m.notice = "replaying"
			} else {
				m.notice = "replay already running"
			}
			return m, nil
		}

		runes := []rune(key)
		if len(runes) != 1 {
			return m, nil
		}
		mv, err := cubesim.ParseKey(runes[0])
		if err != nil {
			return m, nil
		}
		if m.sess.puzzle.Submit(mv, cubesim.SourceLive) {
			m.notice = ""
		} else {
			m.notice = fmt.Sprintf("%s ignored", mv.Notation())
		}

	case tickMsg:
		m.sess.puzzle.Tick()
		m.frame = m.sess.puzzle.Frame()

		m.fpsFrames++
		if elapsed := time.Since(m.fpsStarted); elapsed >= time.Second {
			m.fps = float64(m.fpsFrames) / elapsed.Seconds()
			m.fpsFrames = 0
			m.fpsStarted = time.Now()
		}
		return m, m.tickCmd()
	}

	return m, nil
}

func (m *playModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	f := &m.frame

	b.WriteString(titleStyle.Render("cubesim"))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  %.0f fps", m.fps)))
	if id := m.sess.SessionID(); id != "" {
		b.WriteString(statusStyle.Render("  session " + id[:8]))
	}
	b.WriteString("\n\n")

	layers := make([]string, 0, 3)
	for z := -1; z <= 1; z++ {
		layers = append(layers, layerStyle.Render(renderLayer(f, z)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, layers...))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("   z = -1          z = 0           z = +1"))
	b.WriteString("\n\n")

	switch {
	case f.Active:
		deg := f.Angle * 180 / math.Pi
		b.WriteString(activeStyle.Render(fmt.Sprintf("Turning %s (%s) about %s: %+6.1f°  ", f.Move.Notation(), notation.Describe(f.Move), f.Axis, deg)))
		b.WriteString(progressBar(f.Elapsed, f.Frames, 20))
	case f.Table.IsSolved():
		b.WriteString(homeStyle.Render("Solved"))
	default:
		b.WriteString(movedStyle.Render("Scrambled"))
	}
	b.WriteString("\n")

	status := fmt.Sprintf("History: %d", f.Pending)
	if f.Replaying {
		status += "  (replay running)"
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
	}
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("q w e / a s d / z x c turn • shift reverses • r replay • esc quit"))
	b.WriteString("\n")

	return b.String()
}

// renderLayer draws the z layer as a 3x3 grid of cubie numbers, rows from
// y = +1 down to y = -1. Cubies in the turning layer are highlighted.
func renderLayer(f *cubesim.Frame, z int) string {
	var rows []string
	for y := 1; y >= -1; y-- {
		cells := make([]string, 0, 3)
		for x := -1; x <= 1; x++ {
			slot := cubesim.Coord{X: x, Y: y, Z: z}.Slot()
			cubie := f.Table.At(slot)

			var cell string
			switch {
			case cubie == cubesim.NoCubie:
				cell = statusStyle.Render(" ·")
			case f.Members(slot):
				cell = activeStyle.Render(fmt.Sprintf("%2d", cubie))
			case cubie.Home() == slot:
				cell = homeStyle.Render(fmt.Sprintf("%2d", cubie))
			default:
				cell = movedStyle.Render(fmt.Sprintf("%2d", cubie))
			}
			cells = append(cells, cell)
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := done * width / total
	return "[" + strings.Repeat("█", filled) + strings.Repeat(" ", width-filled) + "]"
}

func runPlay(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; only log when a file is configured.
	log := logger
	if cfg.Log.File == "" {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sess, err := openSession("play", log)
	if err != nil {
		return err
	}
	defer sess.Close()

	p := tea.NewProgram(newPlayModel(sess, cfg.TickInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	table := sess.puzzle.Table()
	fmt.Printf("Moves recorded: %d, solved: %v\n", sess.puzzle.HistoryLen(), table.IsSolved())
	if id := sess.SessionID(); id != "" {
		fmt.Printf("Session: %s\n", id)
	}
	return nil
}
