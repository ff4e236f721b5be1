package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/parser"
	"github.com/suderio/warband/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))

	enemyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	allyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Strikethrough(true)
)

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type replModel struct {
	ctx         context.Context
	app         *session.Session
	title       string
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	floating    string
	width       int
	height      int
	showList    bool
}

func newREPLModel(ctx context.Context, app *session.Session, title string, intro []string) replModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command (e.g., attack to: 3)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	welcome := "Welcome to Warband!\nType 'help' for commands, 'exit' to quit.\n"
	if len(intro) > 0 {
		welcome += "\n" + strings.Join(intro, "\n") + "\n"
	}
	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false)
	sugList.SetShowHelp(false)

	return replModel{
		ctx:         ctx,
		app:         app,
		title:       title,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		historyIdx:  -1,
		logContent:  welcome,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func commandWords() []string {
	words := []string{"exit", "quit"}
	for name := range parser.Usage {
		words = append(words, name)
	}
	sort.Strings(words)
	return words
}

func (m *replModel) updateSuggestions() {
	val := m.textInput.Value()
	var items []list.Item

	defer func() {
		m.suggestions.SetItems(items)
		m.showList = len(items) > 0
		if m.showList {
			m.suggestions.SetHeight(max(4, min(len(items), 10)))
			m.suggestions.ResetSelected()
		}
	}()

	if val == "" {
		return
	}
	lower := strings.ToLower(val)

	for _, c := range commandWords() {
		if strings.HasPrefix(c, lower) && len(val) < len(c) {
			items = append(items, suggestion(c))
		}
	}

	// Target completion after "attack " or "attack to: "
	for _, prefix := range []string{"attack to: ", "attack "} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		partial := lower[len(prefix):]
		for _, u := range m.app.Controller().Targets() {
			id := fmt.Sprint(u.ID)
			if strings.HasPrefix(id, partial) || strings.HasPrefix(strings.ToLower(u.Name()), partial) {
				items = append(items, suggestion(val[:len(prefix)]+id))
			}
		}
		break
	}
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}
			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()
				m.execute(val)
			}

		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2
	}
	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	overhead := titleH + stateH + 1 + listAreaHeight + infoH + 11

	m.viewport.Height = max(4, m.height-overhead)

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *replModel) execute(val string) {
	m.logContent += fmt.Sprintf("\n> %s\n", val)
	lines, err := m.app.Execute(m.ctx, val)
	if len(lines) > 0 {
		m.logContent += strings.Join(lines, "\n") + "\n"
	}
	if err != nil {
		m.logContent += fmt.Sprintf("Error: %v\n", err)
	}

	var said []string
	f := m.app.Controller().Field()
	for _, fl := range m.app.Floating() {
		said = append(said, fmt.Sprintf("%s %s", f.Unit(fl.Unit), fl.Text))
	}
	m.floating = strings.Join(said, "  ")

	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *replModel) renderUnit(u *engine.Unit, player engine.PlayerID) string {
	line := session.DescribeUnit(u)
	switch {
	case u.IsInactive():
		return inactiveStyle.Render(line)
	case u.Player == player:
		return allyStyle.Render(line)
	}
	return enemyStyle.Render(line)
}

func (m *replModel) renderState() string {
	c := m.app.Controller()
	f := c.Field()
	player := engine.Attacker
	if cur := c.CurrentUnit(); cur != nil {
		player = cur.Player
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Round %d ===\n\n", f.Round)
	for _, squad := range f.Squads {
		fmt.Fprintf(&b, "%s\n", squad.Name)
		for _, id := range squad.Units {
			fmt.Fprintf(&b, "  %s\n", m.renderUnit(f.Unit(id), player))
		}
	}
	var queue []string
	for _, id := range c.Pending() {
		queue = append(queue, f.Unit(id).String())
	}
	fmt.Fprintf(&b, "\nNext: %s", strings.Join(queue, ", "))
	if m.floating != "" {
		fmt.Fprintf(&b, "\n%s", m.floating)
	}
	fmt.Fprintf(&b, "\n\n%s", m.app.Prompt())

	return stateBoxStyle.Width(m.width - 4).Render(b.String())
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" Warband | %s ", m.title))
	stateBox := m.renderState()
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", m.textInput.View(), autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		stateBox,
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

// RunTUI runs the interactive battle shell until the player quits.
func RunTUI(ctx context.Context, app *session.Session, title string, intro []string) error {
	m := newREPLModel(ctx, app, title, intro)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
