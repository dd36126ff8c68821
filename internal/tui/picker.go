// Package tui provides the terminal fallbacks for the picker and the secret prompt.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
)

type entry struct {
	index int
	text  string
}

func (e entry) FilterValue() string { return e.text }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entry)
	if !ok {
		return
	}
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("▸ "+e.text))
		return
	}
	fmt.Fprint(w, itemStyle.Render(e.text))
}

// pickerModel is a filterable single-choice list. chosen is the entry index, -1 on cancel.
type pickerModel struct {
	list   list.Model
	chosen int
	done   bool
}

func newPickerModel(title string, entries []string) pickerModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entry{index: i, text: e}
	}
	l := list.New(items, itemDelegate{}, defaultWidth, defaultHeight)
	l.Title = title
	l.Styles.Title = titleStyle
	l.Styles.NoItems = noItemsStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return pickerModel{list: l, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.chosen = e.index
			}
			m.done = true
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// Picker is a domain.Picker rendered in the terminal.
type Picker struct {
	title  string
	input  io.Reader
	output io.Writer
}

// NewPicker creates a terminal picker using the process's stdin and stdout.
func NewPicker(title string) *Picker {
	return &Picker{title: title}
}

// NewPickerWithIO creates a terminal picker on the given streams.
func NewPickerWithIO(title string, in io.Reader, out io.Writer) *Picker {
	return &Picker{title: title, input: in, output: out}
}

// Choose shows entries and returns the selected index, or ErrCancelled on esc/ctrl+c.
func (p *Picker) Choose(ctx context.Context, entries []string) (int, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.input != nil {
		opts = append(opts, tea.WithInput(p.input))
	}
	if p.output != nil {
		opts = append(opts, tea.WithOutput(p.output))
	} else {
		opts = append(opts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newPickerModel(p.title, entries), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return -1, domain.ErrCancelled
		}
		return -1, fmt.Errorf("terminal picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.chosen < 0 {
		return -1, domain.ErrCancelled
	}
	return m.chosen, nil
}

// Ensure Picker implements domain.Picker.
var _ domain.Picker = (*Picker)(nil)
