// Package tui is the interactive terminal dashboard. It renders the derived
// post view and drives the same services as the HTTP API.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"bizdash/app/models"
	"bizdash/app/services"
	"bizdash/app/store"
	"bizdash/app/view"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the current input mode of the dashboard
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeConfirmDelete
)

// Permissions answers permission checks for the logged-in account.
type Permissions interface {
	HasPermission(perm models.Permission) bool
}

// Model is the Bubbletea model for the post dashboard
type Model struct {
	dash    *services.DashboardService
	store   *store.Store
	perms   Permissions
	mode    Mode
	search  textinput.Model
	confirm ConfirmationDialog
	cursor  int
	width   int
	height  int
	err     error

	changes     chan struct{}
	unsubscribe func()
}

// Messages
type stateChangedMsg struct{}

type loadedMsg struct {
	err error
}

type deletedMsg struct {
	id  int64
	err error
}

// NewModel creates a dashboard model over st. Store changes made outside the
// model, such as debounced search and notification expiry, trigger a redraw.
func NewModel(dash *services.DashboardService, st *store.Store, perms Permissions) *Model {
	search := textinput.New()
	search.Placeholder = "Search posts by title or body"
	search.Prompt = "/ "
	search.CharLimit = 100

	m := &Model{
		dash:    dash,
		store:   st,
		perms:   perms,
		search:  search,
		changes: make(chan struct{}, 1),
	}
	m.unsubscribe = st.Subscribe(func(store.State) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m
}

// Close stops listening for store changes.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(m.dash),
		waitForChange(m.changes),
		tea.EnterAltScreen,
	)
}

// Commands
func loadCmd(dash *services.DashboardService) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: dash.Load(context.Background())}
	}
}

func deleteCmd(dash *services.DashboardService, id int64) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: dash.DeletePost(context.Background(), id)}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-6, 10)
		return m, nil

	case stateChangedMsg:
		m.clampCursor()
		return m, waitForChange(m.changes)

	case loadedMsg:
		m.err = msg.err
		m.clampCursor()
		return m, nil

	case deletedMsg:
		m.err = msg.err
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirmDelete:
			return m, m.confirm.Update(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.dash.CommitSearch(m.search.Value())
		m.leaveSearch()
		return m, nil
	case "esc":
		m.leaveSearch()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.dash.SearchInput(v)
	}
	return m, cmd
}

func (m *Model) leaveSearch() {
	m.mode = ModeBrowse
	m.search.Blur()
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.dash.Page()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.mode = ModeSearch
		return m, m.search.Focus()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(page.Items)-1 {
			m.cursor++
		}

	case "left", "h":
		if page.CurrentPage > 1 {
			m.dash.GoToPage(page.CurrentPage - 1)
			m.cursor = 0
		}
	case "right", "l":
		if page.CurrentPage < page.TotalPages {
			m.dash.GoToPage(page.CurrentPage + 1)
			m.cursor = 0
		}

	case "s":
		fields := view.SortFields()
		next := fields[(slices.Index(fields, page.SortBy)+1)%len(fields)]
		m.dash.SetSort(next, page.SortOrder)
	case "o":
		order := store.Desc
		if page.SortOrder == store.Desc {
			order = store.Asc
		}
		m.dash.SetSort(page.SortBy, order)

	case "r":
		return m, loadCmd(m.dash)

	case "x":
		if ns := m.dash.Notifications(); len(ns) > 0 {
			m.dash.DismissNotification(ns[len(ns)-1].ID)
		}

	case "d", "delete":
		if len(page.Items) == 0 {
			return m, nil
		}
		if m.perms != nil && !m.perms.HasPermission(models.PermDelete) {
			m.err = fmt.Errorf("you don't have permission to delete posts")
			return m, nil
		}
		m.openDelete(page.Items[m.cursor])
	}
	return m, nil
}

func (m *Model) openDelete(post models.Post) {
	m.store.Dispatch(store.OpenDeleteModal{Post: post})
	m.mode = ModeConfirmDelete
	m.confirm = NewConfirmationDialog("Delete post", fmt.Sprintf("Delete #%d %q?", post.ID, truncate(post.Title, 40)))
	m.confirm.OnConfirm = func() tea.Cmd {
		m.closeDelete()
		return deleteCmd(m.dash, post.ID)
	}
	m.confirm.OnCancel = func() tea.Cmd {
		m.closeDelete()
		return nil
	}
}

func (m *Model) closeDelete() {
	m.store.Dispatch(store.CloseDeleteModal{})
	m.mode = ModeBrowse
}

func (m *Model) clampCursor() {
	n := len(m.dash.Page().Items)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the dashboard
func (m *Model) View() string {
	st := m.dash.State()
	page := view.Derive(st)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Business Dashboard"))
	if st.User != nil {
		b.WriteString("  " + subtitleStyle.Render(fmt.Sprintf("%s (%s)", st.User.Name, st.User.Role)))
	}
	b.WriteString("\n")

	if m.mode == ModeSearch {
		b.WriteString(m.search.View())
	} else if page.SearchTerm != "" {
		b.WriteString(mutedStyle.Render("Search: " + page.SearchTerm))
	}
	b.WriteString("\n\n")

	if st.Loading {
		b.WriteString(infoStyle.Render("Loading...") + "\n")
	}
	if st.Error != "" {
		b.WriteString(errorStyle.Render("Error: "+st.Error) + "\n")
	}
	if m.err != nil && m.err.Error() != st.Error {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(m.renderTable(page))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d • %d posts • sort: %s %s",
		page.CurrentPage, max(page.TotalPages, 1), page.TotalItems, page.SortBy, page.SortOrder)))
	b.WriteString("\n")

	if len(st.Notifications) > 0 {
		b.WriteString("\n")
		for _, n := range st.Notifications {
			b.WriteString(FormatNotification(n) + "\n")
		}
	}

	if m.mode == ModeConfirmDelete && st.IsDeleteModalOpen {
		b.WriteString("\n" + m.confirm.View() + "\n")
	}

	b.WriteString(helpStyle.Render(strings.Join([]string{
		FormatKey("/", "search"),
		FormatKey("←/→", "page"),
		FormatKey("s/o", "sort"),
		FormatKey("d", "delete"),
		FormatKey("r", "reload"),
		FormatKey("x", "dismiss"),
		FormatKey("q", "quit"),
	}, " • ")))
	return b.String()
}

func (m *Model) renderTable(page view.Page) string {
	if len(page.Items) == 0 {
		return mutedStyle.Render("No posts found") + "\n"
	}
	titleWidth := 50
	if m.width > 30 {
		titleWidth = m.width - 24
	}

	var b strings.Builder
	b.WriteString(headerRowStyle.Render(fmt.Sprintf("  %-14s %-6s %s", "ID", "USER", "TITLE")) + "\n")
	for i, p := range page.Items {
		line := fmt.Sprintf("%-14d %-6d %s", p.ID, p.UserID, truncate(p.Title, titleWidth))
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(rowStyle.Render("  "+line) + "\n")
		}
	}
	return b.String()
}
