package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/juntyr/wobbly"
	"github.com/juntyr/wobbly/rc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	strongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	memberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	weakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type handleKind int

const (
	kindStrong handleKind = iota
	kindMember
	kindWeak
)

func (k handleKind) String() string {
	switch k {
	case kindStrong:
		return "strong"
	case kindMember:
		return "member"
	default:
		return "weak"
	}
}

type handleEntry struct {
	label  string
	kind   handleKind
	strong *rc.Rc[string]
	member *rc.Wobbly[string]
	weak   *rc.Weak[string]
}

func (e *handleEntry) describe() string {
	if e.kind == kindMember {
		return fmt.Sprintf("%s (members=%d)", e.label, e.member.Members())
	}
	return e.label
}

func (e *handleEntry) drop() {
	switch e.kind {
	case kindStrong:
		e.strong.Drop()
	case kindMember:
		e.member.Drop()
	case kindWeak:
		e.weak.Drop()
	}
}

type modelState int

const (
	stateNameValue modelState = iota
	stateBrowse
	stateInspect
)

type interactiveModel struct {
	input     textinput.Model
	entries   []*handleEntry
	log       []string
	value     string
	nextID    int
	selected  int
	state     modelState
	destroyed bool
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "payload string"
	ti.Prompt = "value: "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{input: ti, state: stateNameValue}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

// OnGroupEvent implements wobbly.Observer. Every handle operation runs
// on the update loop goroutine, so the callback never races the model.
func (m *interactiveModel) OnGroupEvent(e wobbly.Event) {
	m.logf("%s g%d members=%d", e.Type, e.Group, e.Members)
}

func (m *interactiveModel) logf(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > 8 {
		m.log = m.log[len(m.log)-8:]
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.dropAll()
			return m, tea.Quit

		case "q":
			if m.state != stateNameValue {
				m.dropAll()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateNameValue:
				m.createValue()
			case stateBrowse:
				if len(m.entries) > 0 {
					m.state = stateInspect
				}
			case stateInspect:
				m.state = stateBrowse
			}

		case "esc":
			if m.state == stateInspect {
				m.state = stateBrowse
			}

		case "c":
			if m.state == stateBrowse {
				m.cloneSelected()
			}

		case "d":
			if m.state == stateBrowse {
				m.dropSelected()
			}

		case "u":
			if m.state == stateBrowse {
				m.upgradeSelected()
			}

		case "w":
			if m.state == stateBrowse {
				m.downgradeSelected()
			}

		case "g":
			if m.state == stateBrowse {
				m.foundGroup()
			}

		case "r":
			if m.state == stateBrowse {
				m.reset()
			}
		}
	}

	if m.state == stateNameValue {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) createValue() {
	name := strings.TrimSpace(m.input.Value())
	if name == "" {
		name = "payload"
	}
	m.value = name
	m.destroyed = false
	r := rc.NewWithDrop(name, func(v string) {
		m.destroyed = true
		m.logf("destructor: %q destroyed", v)
	})
	m.entries = append(m.entries, &handleEntry{
		label:  m.nextLabel(kindStrong),
		kind:   kindStrong,
		strong: r,
	})
	m.selected = 0
	m.state = stateBrowse
	m.logf("created %q", name)
}

func (m *interactiveModel) nextLabel(k handleKind) string {
	m.nextID++
	return fmt.Sprintf("%s#%d", k, m.nextID)
}

func (m *interactiveModel) selectedEntry() *handleEntry {
	if len(m.entries) == 0 || m.selected >= len(m.entries) {
		return nil
	}
	return m.entries[m.selected]
}

func (m *interactiveModel) cloneSelected() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	n := &handleEntry{kind: e.kind, label: m.nextLabel(e.kind)}
	switch e.kind {
	case kindStrong:
		n.strong = e.strong.Clone()
	case kindMember:
		n.member = e.member.Clone()
	case kindWeak:
		n.weak = e.weak.Clone()
	}
	m.entries = append(m.entries, n)
	m.logf("%s cloned into %s", e.label, n.label)
}

func (m *interactiveModel) dropSelected() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	e.drop()
	m.entries = append(m.entries[:m.selected], m.entries[m.selected+1:]...)
	if m.selected >= len(m.entries) && m.selected > 0 {
		m.selected--
	}
	m.logf("%s dropped", e.label)
}

func (m *interactiveModel) upgradeSelected() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	var (
		s  *rc.Rc[string]
		ok bool
	)
	switch e.kind {
	case kindMember:
		s, ok = e.member.Upgrade()
	case kindWeak:
		s, ok = e.weak.Upgrade()
	default:
		m.logf("%s is already strong", e.label)
		return
	}
	if !ok {
		m.logf("%s upgrade failed: value is dead", e.label)
		return
	}
	n := &handleEntry{kind: kindStrong, label: m.nextLabel(kindStrong), strong: s}
	m.entries = append(m.entries, n)
	m.logf("%s upgraded into %s", e.label, n.label)
}

func (m *interactiveModel) downgradeSelected() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	var w *rc.Weak[string]
	switch e.kind {
	case kindStrong:
		w = e.strong.Downgrade()
	case kindMember:
		w = e.member.Downgrade()
	default:
		m.logf("%s is already weak", e.label)
		return
	}
	n := &handleEntry{kind: kindWeak, label: m.nextLabel(kindWeak), weak: w}
	m.entries = append(m.entries, n)
	m.logf("%s downgraded into %s", e.label, n.label)
}

func (m *interactiveModel) foundGroup() {
	e := m.selectedEntry()
	if e == nil {
		return
	}
	if e.kind != kindStrong {
		m.logf("found needs a strong handle")
		return
	}
	n := &handleEntry{
		kind:   kindMember,
		label:  m.nextLabel(kindMember),
		member: rc.NewWobbly(e.strong),
	}
	m.entries = append(m.entries, n)
	m.logf("%s founded a group, %s is its first member", e.label, n.label)
}

func (m *interactiveModel) reset() {
	m.dropAll()
	m.log = nil
	m.selected = 0
	m.input.SetValue("")
	m.input.Focus()
	m.state = stateNameValue
}

func (m *interactiveModel) dropAll() {
	for _, e := range m.entries {
		e.drop()
	}
	m.entries = nil
}

func (m *interactiveModel) counts() (strong, weak int, ok bool) {
	for _, e := range m.entries {
		switch e.kind {
		case kindStrong:
			return e.strong.StrongCount(), e.strong.WeakCount(), true
		case kindMember:
			return e.member.StrongCount(), e.member.WeakCount(), true
		case kindWeak:
			return e.weak.StrongCount(), e.weak.WeakCount(), true
		}
	}
	return 0, 0, false
}

func (m *interactiveModel) statusLine() string {
	strong, weak, ok := m.counts()
	if !ok {
		return helpStyle.Render("no live handles")
	}
	if m.destroyed {
		return errorStyle.Render(fmt.Sprintf("%q destroyed", m.value)) +
			helpStyle.Render(fmt.Sprintf("  weak=%d", weak))
	}
	return fmt.Sprintf("%q alive  strong=%d weak=%d", m.value, strong, weak)
}

func (m *interactiveModel) formatEntry(e *handleEntry) string {
	switch e.kind {
	case kindStrong:
		return strongStyle.Render(e.describe())
	case kindMember:
		return memberStyle.Render(e.describe())
	default:
		return weakStyle.Render(e.describe())
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Wobbly Playground"))
	b.WriteString("\n\n")

	if m.state == stateNameValue {
		b.WriteString("Name the shared value:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter create • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		if len(m.entries) == 0 {
			b.WriteString("No live handles. Press r to start over.\n")
		} else {
			b.WriteString("Handles:\n\n")
			for i, e := range m.entries {
				if i == m.selected {
					b.WriteString(selectedStyle.Render("> " + e.describe()))
				} else {
					b.WriteString("  " + m.formatEntry(e))
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		if len(m.log) > 0 {
			b.WriteString("Events:\n")
			for _, line := range m.log {
				b.WriteString(eventStyle.Render("  " + line))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ select • c clone • d drop • u upgrade • w downgrade • g found group • enter inspect • r reset • q quit"))

	case stateInspect:
		e := m.selectedEntry()
		if e != nil {
			b.WriteString(fmt.Sprintf("Handle %s\n\n", m.formatEntry(e)))
			switch e.kind {
			case kindStrong:
				b.WriteString(fmt.Sprintf("  strong handles: %d\n", e.strong.StrongCount()))
				b.WriteString(fmt.Sprintf("  weak handles:   %d\n", e.strong.WeakCount()))
			case kindMember:
				b.WriteString(fmt.Sprintf("  group members:  %d\n", e.member.Members()))
				b.WriteString(fmt.Sprintf("  strong handles: %d\n", e.member.StrongCount()))
				b.WriteString(fmt.Sprintf("  weak handles:   %d\n", e.member.WeakCount()))
			case kindWeak:
				alive := "dead"
				if e.weak.StrongCount() > 0 {
					alive = "alive"
				}
				b.WriteString(fmt.Sprintf("  value:          %s\n", alive))
				b.WriteString(fmt.Sprintf("  strong handles: %d\n", e.weak.StrongCount()))
				b.WriteString(fmt.Sprintf("  weak handles:   %d\n", e.weak.WeakCount()))
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	m := newInteractiveModel()
	wobbly.Subscribe(m)
	defer wobbly.Unsubscribe(m)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
