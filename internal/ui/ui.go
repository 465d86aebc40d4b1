// Package ui renders the task list in the terminal. All state changes go
// through the view model; this package only maps keys to handlers and
// draws the result.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dela/internal/config"
	"dela/internal/storage"
	"dela/internal/task"
	"dela/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
)

// formField indexes the two form inputs: title first, description second.
const (
	fieldTitle = iota
	fieldDescription
	fieldCount
)

// notifExpiredMsg asks the model to drop a notification whose display time
// is up. Dismissal is idempotent, so a late tick after eviction is fine.
type notifExpiredMsg struct {
	id string
}

type Model struct {
	vm         *view.ViewModel
	cfg        config.Config
	cursor     int
	mode       mode
	inputs     []textinput.Model
	focus      int
	search     textinput.Model
	confirmDel bool
	pendingDel *task.Task
	scheduled  map[string]bool
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	descStyle      = lipgloss.NewStyle().Faint(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Run loads the initial snapshot and starts the program. A failed first
// load is not fatal: the view model keeps an empty snapshot and shows the
// failure as a notification.
func Run(store *storage.Store, cfg config.Config) error {
	vm := view.New(store)
	vm.Reload()

	program := tea.NewProgram(newModel(vm, cfg))
	_, err := program.Run()
	return err
}

func newModel(vm *view.ViewModel, cfg config.Config) Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 256
	title.Width = 40

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 512
	desc.Width = 40

	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 256
	search.Width = 40

	return Model{
		vm:        vm,
		cfg:       cfg,
		inputs:    []textinput.Model{title, desc},
		search:    search,
		mode:      modeList,
		scheduled: map[string]bool{},
	}
}

func (m Model) Init() tea.Cmd {
	return m.scheduleExpiry()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notifExpiredMsg:
		m.vm.Dismiss(msg.id)
		delete(m.scheduled, msg.id)
		return m, nil
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg.String(), msg)
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 10
		}
		m.search.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.vm.Filtered()
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(tasks))
		}
	case m.cfg.Keys.Add:
		m.vm.CancelEdit()
		return m.openForm(task.Task{})
	case m.cfg.Keys.Edit:
		if len(tasks) == 0 {
			return m, nil
		}
		t, ok := m.vm.StartEdit(tasks[m.cursor].ID)
		if !ok {
			return m, nil
		}
		return m.openForm(t)
	case m.cfg.Keys.Delete:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
	case m.cfg.Keys.Toggle:
		if len(tasks) == 0 {
			return m, nil
		}
		m.vm.ToggleStatus(tasks[m.cursor].ID)
		m.cursor = clampCursor(m.cursor, len(m.vm.Filtered()))
		return m, m.scheduleExpiry()
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.search.SetValue(m.vm.Query())
		m.search.Focus()
	}
	return m, nil
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.vm.CancelEdit()
		return m.closeForm(), nil
	case "tab":
		m.focus = (m.focus + 1) % fieldCount
		return m.focusField(), nil
	case "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m.focusField(), nil
	case m.cfg.Keys.Confirm:
		if m.focus < fieldCount-1 {
			m.focus++
			return m.focusField(), nil
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
}

// submitForm hands both fields to the upsert handler. The fields are reset
// whether or not the store call succeeded; the outcome is reported through
// the notification queue.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	m.vm.Submit(m.inputs[fieldTitle].Value(), m.inputs[fieldDescription].Value())
	next := m.closeForm()
	next.cursor = clampCursor(next.cursor, len(m.vm.Filtered()))
	return next, next.scheduleExpiry()
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.search.SetValue("")
		m.vm.SetSearchQuery("")
		m.search.Blur()
		m.mode = modeList
		m.cursor = 0
		return m, nil
	case m.cfg.Keys.Confirm:
		m.search.Blur()
		m.mode = modeList
		m.cursor = clampCursor(m.cursor, len(m.vm.Filtered()))
		return m, nil
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.vm.SetSearchQuery(m.search.Value())
		m.cursor = clampCursor(m.cursor, len(m.vm.Filtered()))
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel != nil {
			m.vm.Remove(m.pendingDel.ID)
		}
		m.confirmDel = false
		m.pendingDel = nil
		m.cursor = clampCursor(m.cursor, len(m.vm.Filtered()))
		return m, m.scheduleExpiry()
	default:
		return m, nil
	}
}

func (m Model) openForm(t task.Task) (tea.Model, tea.Cmd) {
	m.inputs[fieldTitle].SetValue(t.Title)
	m.inputs[fieldDescription].SetValue(t.Description)
	m.focus = fieldTitle
	m.mode = modeForm
	return m.focusField(), nil
}

func (m Model) closeForm() Model {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldTitle
	m.mode = modeList
	return m
}

func (m Model) focusField() Model {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

// scheduleExpiry arranges a dismissal tick for every notification that
// does not have one yet.
func (m Model) scheduleExpiry() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.vm.Notifications() {
		if m.scheduled[n.ID] {
			continue
		}
		m.scheduled[n.ID] = true
		id := n.ID
		cmds = append(cmds, tea.Tick(time.Until(n.Expiry), func(time.Time) tea.Msg {
			return notifExpiredMsg{id: id}
		}))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Dela"))
	b.WriteString("\n\n")

	if m.mode == modeSearch || m.vm.Query() != "" {
		b.WriteString("Search: ")
		if m.mode == modeSearch {
			b.WriteString(m.search.View())
		} else {
			b.WriteString(m.vm.Query())
		}
		b.WriteString("\n\n")
	}

	if m.vm.Loading() {
		b.WriteString("Loading...\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	if m.mode == modeForm {
		b.WriteString("\n")
		b.WriteString(m.renderForm())
	}

	if m.confirmDel && m.pendingDel != nil {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Delete %q? y/n\n", m.pendingDel.Title))
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotifications())
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderTaskList() string {
	tasks := m.vm.Filtered()
	if len(tasks) == 0 {
		if m.vm.Query() != "" {
			return "No tasks match the search.\n"
		}
		return "No tasks yet. Press 'a' to add one.\n"
	}

	var b strings.Builder
	for i, t := range tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Status == task.StatusCompleted {
			checkbox = "[x]"
		}

		title := t.Title
		if t.Status == task.StatusCompleted {
			title = completedStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox, title)
		if t.Description != "" {
			line += " " + descStyle.Render("— "+t.Description)
		}
		if m.cursor == i && m.mode == modeList {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	if _, editing := m.vm.Editing(); editing {
		b.WriteString("Edit task (enter to advance/save, esc to cancel)\n")
	} else {
		b.WriteString("New task (enter to advance/save, esc to cancel)\n")
	}
	b.WriteString("Title:       " + m.inputs[fieldTitle].View() + "\n")
	b.WriteString("Description: " + m.inputs[fieldDescription].View() + "\n")
	return b.String()
}

func (m Model) renderNotifications() string {
	notes := m.vm.Notifications()
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range notes {
		switch n.Kind {
		case view.KindError:
			b.WriteString(errorStyle.Render(n.Message))
		case view.KindWarn:
			b.WriteString(warnStyle.Render(n.Message))
		default:
			b.WriteString(infoStyle.Render(n.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return helpStyle.Render(fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s search • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete, k.Search, k.Quit))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
