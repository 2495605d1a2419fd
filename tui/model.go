// Package tui is the interactive terminal search view.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ghexplorer/models"
	"ghexplorer/render"
	"ghexplorer/search"
)

// Controller is the part of search.Controller the view drives.
type Controller interface {
	SetQuery(query string)
	SetLanguage(language string)
	SetSort(key models.SortKey)
	SetOrder(order models.SortOrder)
	ApplyQuickFilter(qf models.QuickFilter)
	Reset()
	NextPage() bool
	PreviousPage() bool
	Retry()
	Filters() models.SearchFilters
	State() search.State
}

// StateMsg carries a new controller state into the update loop.
type StateMsg search.State

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#58A6FF")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B949E"))
)

const helpText = "tab/shift+tab page · ctrl+l language · ctrl+s sort · ctrl+o order · " +
	"ctrl+t trending · alt+1..6 presets · ctrl+r retry · esc quit"

// Model is the bubbletea model of the search view.
type Model struct {
	ctrl    Controller
	updates <-chan search.State
	input   textinput.Model
	state   search.State
	now     func() time.Time

	width    int
	height   int
	quitting bool
}

// New returns a model driving ctrl. updates, if not nil, delivers
// controller states to the update loop.
func New(ctrl Controller, updates <-chan search.State) Model {
	ti := textinput.New()
	ti.Placeholder = "Search repositories (empty shows popular ones)"
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		ctrl:    ctrl,
		updates: updates,
		input:   ti,
		state:   ctrl.State(),
		now:     time.Now,
	}
}

func waitForState(updates <-chan search.State) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return StateMsg(st)
	}
}

// Init starts the cursor blink and the state listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForState(m.updates))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case StateMsg:
		m.state = search.State(msg)
		return m, waitForState(m.updates)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.ctrl.NextPage()
			return m, nil
		case "shift+tab":
			m.ctrl.PreviousPage()
			return m, nil
		case "ctrl+r":
			m.ctrl.Retry()
			return m, nil
		case "ctrl+l":
			m.ctrl.SetLanguage(nextLanguage(m.ctrl.Filters().Language))
			return m, nil
		case "ctrl+s":
			m.ctrl.SetSort(nextSort(m.ctrl.Filters().Sort))
			return m, nil
		case "ctrl+o":
			order := models.OrderAsc
			if m.ctrl.Filters().Order == models.OrderAsc {
				order = models.OrderDesc
			}
			m.ctrl.SetOrder(order)
			return m, nil
		case "ctrl+t":
			m.input.SetValue("")
			m.ctrl.Reset()
			return m, nil
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
			i := int(msg.String()[len("alt+")] - '1')
			qf := models.QuickFilters[i]
			m.input.SetValue(qf.Query)
			m.ctrl.ApplyQuickFilter(qf)
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetQuery(v)
	}
	return m, cmd
}

func nextLanguage(current string) string {
	all := append([]string{models.LanguageAll}, models.PopularLanguages...)
	for i, l := range all {
		if l == current {
			return all[(i+1)%len(all)]
		}
	}
	return models.LanguageAll
}

func nextSort(current models.SortKey) models.SortKey {
	for i, k := range models.SortKeys {
		if k == current {
			return models.SortKeys[(i+1)%len(models.SortKeys)]
		}
	}
	return models.SortStars
}

// View renders the search view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.ctrl.Filters()

	var b strings.Builder
	b.WriteString(headerStyle.Render("GitHub Explorer"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(render.Subtle(fmt.Sprintf("language: %s · sort: %s · order: %s", f.Language, f.Sort, f.Order)))
	b.WriteString("\n\n")

	switch m.state.Status {
	case search.StatusIdle:
		b.WriteString(render.Subtle("Type to search"))
	case search.StatusLoading:
		b.WriteString(render.Subtle("Searching…"))
		if m.state.Result != nil {
			b.WriteString("\n\n")
			b.WriteString(m.results())
		}
	case search.StatusError:
		b.WriteString(render.Error(m.state.Error))
		b.WriteString("\n")
		b.WriteString(render.Subtle("press ctrl+r to retry"))
	case search.StatusSuccess:
		b.WriteString(m.results())
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m Model) results() string {
	st := m.state
	return render.SearchSummary(st.Result, st.Intent.Filters.Page, st.Intent.Filters.PerPage) +
		"\n\n" + render.RepositoryList(st.Result.Items, m.now())
}
