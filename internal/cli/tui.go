package cli

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Wall styles
var (
	wallLineStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	wallWordStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	wallFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// terminal - Surface and UI executor backed by a bubbletea program
// =============================================================================

// terminal is a surface.Surface drawn by a bubbletea program. It is also the
// scheduler's UI executor: functions passed to Execute run inside the
// program's Update loop, so steps marked as UI-thread never race the view.
type terminal struct {
	width, height float64

	mu      sync.Mutex
	scene   surface.Scene
	shown   bool
	program *tea.Program
	onSkip  func()
}

// newTerminal creates a terminal for a layout canvas of the given size. The
// canvas is scaled to the terminal window when drawn.
func newTerminal(width, height float64) *terminal {
	return &terminal{width: width, height: height}
}

// attach binds the program that draws t. Until then, Execute runs inline.
func (t *terminal) attach(p *tea.Program, onSkip func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = p
	t.onSkip = onSkip
}

// Size implements surface.Surface.
func (t *terminal) Size() (float64, float64) { return t.width, t.height }

// Show implements surface.Surface.
func (t *terminal) Show(s surface.Scene) {
	t.set(s, true)
	t.redraw()
}

// Transition implements surface.Surface. A terminal cannot animate, so it
// shows s at once and reports completion after d.
func (t *terminal) Transition(s surface.Scene, d time.Duration, done func()) {
	t.Show(s)
	if done != nil {
		time.AfterFunc(max(d, 0), done)
	}
}

// Clear implements surface.Surface.
func (t *terminal) Clear() {
	t.set(surface.Scene{}, false)
	t.redraw()
}

// Execute implements scheduler.Executor.
func (t *terminal) Execute(fn func()) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p == nil {
		fn()
		return
	}
	p.Send(execMsg{fn: fn})
}

func (t *terminal) set(s surface.Scene, shown bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scene = s
	t.shown = shown
}

func (t *terminal) current() (surface.Scene, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scene, t.shown
}

func (t *terminal) skip() {
	t.mu.Lock()
	fn := t.onSkip
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// redraw asks the program for a new frame. Show may be called from within
// Update, where a blocking Send would deadlock, so the send is detached.
func (t *terminal) redraw() {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		go p.Send(redrawMsg{})
	}
}

// =============================================================================
// wallModel - bubbletea model
// =============================================================================

type (
	execMsg   struct{ fn func() }
	redrawMsg struct{}
)

// wallModel renders the terminal's current scene.
type wallModel struct {
	term *terminal
	cols int
	rows int
}

func newWallModel(t *terminal) wallModel {
	return wallModel{term: t, cols: 80, rows: 24}
}

func (m wallModel) Init() tea.Cmd {
	return tea.SetWindowTitle(appName)
}

func (m wallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case execMsg:
		msg.fn()
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s", " ", "right":
			m.term.skip()
		}
	}
	return m, nil
}

func (m wallModel) View() string {
	s, shown := m.term.current()
	w, h := m.term.Size()
	return renderScene(s, shown, w, h, m.cols, m.rows)
}

// renderScene draws s into a cols×rows frame. Word scenes are scaled from
// the w×h layout canvas onto a character grid.
func renderScene(s surface.Scene, shown bool, w, h float64, cols, rows int) string {
	cols, rows = max(cols, 20), max(rows, 8)
	innerCols, innerRows := cols-4, rows-4

	var body []string
	if shown {
		if s.Title != "" {
			body = append(body, StyleTitle.Render(truncate(s.Title, innerCols)), "")
		}
		if len(s.Words) > 0 {
			for _, line := range wordGrid(s.Words, w, h, innerCols, innerRows-len(body)) {
				body = append(body, wallWordStyle.Render(line))
			}
		}
		for _, line := range s.Lines {
			if len(body) >= innerRows {
				break
			}
			body = append(body, wallLineStyle.Render(truncate(line, innerCols)))
		}
	}
	for len(body) < innerRows {
		body = append(body, "")
	}

	frame := wallFrameStyle.Width(cols - 2).Render(strings.Join(body, "\n"))
	status := appName
	if s.Step != "" {
		status = fmt.Sprintf("%s %s %s", appName, iconArrow, s.Step)
	}
	return frame + "\n" + StyleDim.Render(status+"  ·  s skip  ·  q quit")
}

// wordGrid places words on a cols×rows character grid. Each word is centred
// on the cell that corresponds to the centre of its bounds; words that would
// cover an already written cell or leave the grid are dropped.
func wordGrid(words []layout.Placement, w, h float64, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if w <= 0 || h <= 0 {
		w, h = layoutExtent(words)
	}
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	for _, p := range words {
		text := []rune(p.Text)
		if len(text) == 0 || len(text) > cols {
			continue
		}
		cx, cy := p.Bounds.Center()
		row := int((cy/h + 0.5) * float64(rows))
		col := int((cx/w+0.5)*float64(cols)) - len(text)/2
		if row < 0 || row >= rows {
			continue
		}
		col = min(max(col, 0), cols-len(text))
		if !free(grid[row], col, len(text)) {
			continue
		}
		copy(grid[row][col:], text)
	}

	out := make([]string, rows)
	for i, r := range grid {
		out[i] = string(r)
	}
	return out
}

// free reports whether row[col:col+n] and one cell on either side are blank.
func free(row []rune, col, n int) bool {
	for i := max(col-1, 0); i < min(col+n+1, len(row)); i++ {
		if row[i] != ' ' {
			return false
		}
	}
	return true
}

func layoutExtent(words []layout.Placement) (float64, float64) {
	var w, h float64
	for _, p := range words {
		cx, cy := p.Bounds.Center()
		w = max(w, 2*(math.Abs(cx)+p.Bounds.W/2))
		h = max(h, 2*(math.Abs(cy)+p.Bounds.H/2))
	}
	return max(w, 1), max(h, 1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}
