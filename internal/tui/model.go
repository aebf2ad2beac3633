package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/pagetype/internal/extract"
	"github.com/verte-zerg/pagetype/internal/model"
	"github.com/verte-zerg/pagetype/internal/session"
)

const (
	contentRatio    = 0.70
	maxContentWidth = 100
	// header, blank line, blank line, help
	chromeHeight = 4
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFFFFF"))
	statsStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	stopStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#DC3545")).Padding(0, 1)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	resultStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
)

type keyMap struct {
	Stop    key.Binding
	Quit    key.Binding
	Restart key.Binding
	Close   key.Binding
	active  bool
}

func newKeyMap() keyMap {
	return keyMap{
		Stop:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop game")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
		Close:   key.NewBinding(key.WithKeys("q", "esc", "enter"), key.WithHelp("q", "close")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	if k.active {
		return []key.Binding{k.Stop, k.Quit}
	}
	return []key.Binding{k.Restart, k.Close}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

// Model implements the Bubble Tea overlay for one document.
type Model struct {
	doc     extract.Source
	session *session.Session
	log     zerolog.Logger

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	width  int
	height int

	snap   session.Snapshot
	final  model.StatsRecord
	ended  bool
	errMsg string
}

// NewModel builds the overlay and the session it drives. The session is
// created idle; call Start before running the program.
func NewModel(doc extract.Source, log zerolog.Logger, opts ...session.Option) *Model {
	m := &Model{
		doc:      doc,
		log:      log,
		keys:     newKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
	}
	opts = append(opts, session.WithObserver(m), session.WithLogger(log))
	m.session = session.New(opts...)
	return m
}

// Start begins a session over the document.
func (m *Model) Start() error {
	return m.session.Start(m.doc)
}

// Session exposes the underlying state machine.
func (m *Model) Session() *session.Session {
	return m.session
}

// Notify implements session.Observer.
func (m *Model) Notify(e session.Event) {
	m.snap = e.Snapshot
	switch e.Kind {
	case session.EventStarted:
		m.ended = false
		m.errMsg = ""
	case session.EventStopped:
		m.final = e.Record
		m.ended = true
	}
	m.syncViewport()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncViewport()
		return m, nil
	case tickMsg:
		if m.session.Status() == session.Active {
			m.snap = m.session.Snapshot()
		}
		return m, tick()
	case tea.KeyMsg:
		if m.session.Status() != session.Active {
			return m.updateFinished(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			m.session.Stop()
			return m, tea.Quit
		}
		for _, k := range keystrokesFor(msg) {
			if m.session.SubmitKeystroke(k) == session.SessionEnded {
				break
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Close):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		if err := m.session.Start(m.doc); err != nil {
			m.log.Error().Err(err).Msg("failed to restart session")
			m.errMsg = err.Error()
		}
	}
	return m, nil
}

// keystrokesFor maps a terminal key event to session keystrokes. Terminals
// report the shifted character rather than the modifier, so Shift is derived
// from the case of letters. Pasted text yields one keystroke per rune.
func keystrokesFor(msg tea.KeyMsg) []session.Keystroke {
	switch msg.Type {
	case tea.KeyEsc:
		return []session.Keystroke{{Key: session.KeyEscape}}
	case tea.KeySpace:
		return []session.Keystroke{{Key: " "}}
	case tea.KeyEnter:
		return []session.Keystroke{{Key: "Enter"}}
	case tea.KeyTab:
		return []session.Keystroke{{Key: "Tab"}}
	case tea.KeyBackspace:
		return []session.Keystroke{{Key: "Backspace"}}
	case tea.KeyRunes:
		out := make([]session.Keystroke, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, session.Keystroke{Key: string(r), Shift: unicode.IsUpper(r)})
		}
		return out
	default:
		return nil
	}
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * contentRatio)
	return max(1, min(w, maxContentWidth))
}

// syncViewport re-wraps the target text and keeps the cursor line centred.
func (m *Model) syncViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.viewport.Width = m.contentWidth() + 1
	m.viewport.Height = max(1, m.height-chromeHeight)
	lines := wrapStyledRunes(buildStyledRunes([]rune(m.snap.TargetText), m.snap.Cursor), m.contentWidth())
	m.viewport.SetContent(renderLines(lines))
	m.viewport.SetYOffset(cursorLine(lines) - m.viewport.Height/2)
}

// View implements tea.Model.
func (m *Model) View() string {
	m.keys.active = m.session.Status() == session.Active
	if !m.keys.active {
		return m.place(m.renderResult())
	}
	if m.width == 0 || m.height == 0 {
		return m.renderHeader() + "\n\n" + renderStyledRunes(buildStyledRunes([]rune(m.snap.TargetText), m.snap.Cursor))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.viewport.View(),
		"",
		m.help.View(m.keys),
	)
	return m.place(body)
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	stats := fmt.Sprintf("WPM: %d | Accuracy: %.1f%% | Mistakes: %d", m.snap.WPM, m.snap.Accuracy, m.snap.Mistakes)
	return statsStyle.Render(stats) + "  " + stopStyle.Render("Stop Game (Esc)")
}

func (m *Model) renderResult() string {
	if !m.ended {
		return ""
	}
	rec := m.final
	title := "Session complete"
	if !rec.Completed {
		title = "Session stopped"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("WPM: %d", rec.WPM),
		fmt.Sprintf("Accuracy: %.1f%%", rec.Accuracy),
		fmt.Sprintf("Mistakes: %d", rec.Mistakes),
		fmt.Sprintf("Typed: %d/%d", rec.Typed, rec.TargetLength),
	}
	if m.errMsg != "" {
		lines = append(lines, "", m.errMsg)
	}
	lines = append(lines, "", m.help.View(m.keys))
	return resultStyle.Render(strings.Join(lines, "\n"))
}
