// Package pager is the interactive viewer behind dis --tui: a scrollable
// listing with a filterable jump list of the symbols it contains.
package pager

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"roptool/internal/analysis"
	"roptool/internal/roptool/styles"
	"roptool/internal/ui/listing"
)

// Mark is a symbol and the listing line it labels.
type Mark struct {
	Line int
	Addr uint64
	Name string
}

// Collect renders events into listing text and records where each symbol
// line ends up.
func Collect(events iter.Seq[analysis.Event], p *listing.Printer) (string, []Mark) {
	var lines []string
	var marks []Mark
	for ev := range events {
		text := p.Line(ev)
		if sym, ok := ev.(analysis.SymbolEvent); ok {
			// text is a blank line followed by the label
			marks = append(marks, Mark{Line: len(lines) + 1, Addr: sym.Addr, Name: sym.Name})
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}
	return strings.Join(lines, "\n"), marks
}

type viewMode int

const (
	viewListing viewMode = iota
	viewSymbols
)

type symbolItem struct {
	mark Mark
}

func (i symbolItem) Title() string       { return fmt.Sprintf("%x  %s", i.mark.Addr, i.mark.Name) }
func (i symbolItem) Description() string { return "" }
func (i symbolItem) FilterValue() string { return i.mark.Name }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(symbolItem)
	if !ok {
		return
	}

	indicator, addrStyle := " ", styles.NormalAddr
	if index == m.Index() {
		indicator, addrStyle = ">", styles.SelectedAddr
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%x", i.mark.Addr)),
		colorizeName(i.mark.Name))
}

// colorizeName dims namespaces of a demangled name and highlights the
// final component.
func colorizeName(name string) string {
	head, args, hasArgs := strings.Cut(name, "(")
	parts := strings.Split(head, "::")
	for i, part := range parts {
		if i < len(parts)-1 {
			parts[i] = styles.Namespace.Render(part)
		} else {
			parts[i] = styles.FuncName.Render(part)
		}
	}
	out := strings.Join(parts, styles.Namespace.Render("::"))
	if hasArgs {
		out += styles.Namespace.Render("(" + args)
	}
	return out
}

type listingMsg struct {
	content string
	marks   []Mark
}

// Model is the bubbletea model of the pager.
type Model struct {
	title       string
	events      iter.Seq[analysis.Event]
	printer     *listing.Printer
	viewport    viewport.Model
	symbolsList list.Model
	spinner     spinner.Model
	mode        viewMode
	loading     bool
	marks       []Mark
	width       int
	height      int
}

// New builds a pager over events. Rendering starts when the program runs.
func New(title string, events iter.Seq[analysis.Event], p *listing.Printer) Model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	symbolsList := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	symbolsList.SetShowStatusBar(false)
	symbolsList.SetFilteringEnabled(true)
	symbolsList.Title = "Symbols"
	symbolsList.Styles.Title = styles.Title

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedAddr

	return Model{
		title:       title,
		events:      events,
		printer:     p,
		viewport:    vp,
		symbolsList: symbolsList,
		spinner:     s,
		loading:     true,
		width:       80,
		height:      24,
	}
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		content, marks := Collect(m.events, m.printer)
		return listingMsg{content: content, marks: marks}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case listingMsg:
		m.loading = false
		m.marks = msg.marks
		m.viewport.SetContent(msg.content)
		items := make([]list.Item, 0, len(msg.marks))
		for _, mark := range msg.marks {
			items = append(items, symbolItem{mark: mark})
		}
		return m, m.symbolsList.SetItems(items)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 2)
		m.symbolsList.SetWidth(msg.Width)
		m.symbolsList.SetHeight(msg.Height - 2)

	case tea.KeyMsg:
		if m.mode == viewSymbols && m.symbolsList.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "s":
			if m.mode == viewListing && len(m.marks) > 0 {
				m.mode = viewSymbols
			} else {
				m.mode = viewListing
			}
			return m, nil
		case "enter":
			if m.mode == viewSymbols {
				if item, ok := m.symbolsList.SelectedItem().(symbolItem); ok {
					m.viewport.SetYOffset(item.mark.Line)
					m.mode = viewListing
				}
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewSymbols:
		m.symbolsList, cmd = m.symbolsList.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n %s Disassembling %s...", m.spinner.View(), m.title)
	case m.mode == viewSymbols:
		content = m.symbolsList.View()
	default:
		content = m.viewport.View()
	}

	menu := " Q: quit "
	switch {
	case m.mode == viewSymbols:
		menu = " Enter: jump • Tab: listing • /: filter • Q: quit "
	case len(m.marks) > 0:
		menu = fmt.Sprintf(" %s • S: symbols • Q: quit ", m.title)
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// Run shows the pager until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	program := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
