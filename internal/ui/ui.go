package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/trax/internal/sync"
	"github.com/desertthunder/trax/internal/track"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	ArchiveView
	ConfirmView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *sync.Engine
	width        int
	height       int
	libraryList  list.Model
	archiveList  list.Model
	selectedItem *track.Item
	syncErr      error
	err          error
	help         help.Model
	keys         keyMap
}

type itemsFetchedMsg struct {
	active   []*track.Item
	archived []*track.Item
	err      error
}

type syncCompleteMsg struct {
	key string
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *sync.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   LibraryView,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the tracked library.
func (m *Model) Init() tea.Cmd {
	return m.fetchItems()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.libraryList.Width() == 0 {
			m.libraryList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.archiveList.Width() == 0 {
			m.archiveList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView, ArchiveView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case itemsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.libraryList = newItemList("Tracked Library", msg.active, m.width, m.height)
		m.archiveList = newItemList("Archived Entries", msg.archived, m.width, m.height)
		return m, nil

	case syncCompleteMsg:
		m.syncErr = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LibraryView:
		return m.renderList(m.libraryList)
	case ArchiveView:
		return m.renderList(m.archiveList)
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func newItemList(title string, items []*track.Item, width, height int) list.Model {
	wrapped := make([]list.Item, len(items))
	for i, item := range items {
		wrapped[i] = libraryItem{item: item}
	}
	l := list.New(wrapped, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetSize(width-4, height-8)
	return l
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.view == LibraryView {
			m.view = ArchiveView
		} else {
			m.view = LibraryView
		}
		return m, nil
	case "r":
		return m, m.fetchItems()
	case "enter":
		if m.view != LibraryView {
			return m, nil
		}
		selected := m.libraryList.SelectedItem()
		if selected != nil {
			if li, ok := selected.(libraryItem); ok && li.item.Linked() {
				m.selectedItem = li.item
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = LibraryView
		m.selectedItem = nil
		return m, nil
	case "y":
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r", "esc", "enter":
		m.view = LibraryView
		m.selectedItem = nil
		m.syncErr = nil
		return m, m.fetchItems()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case ArchiveView:
		m.archiveList, cmd = m.archiveList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchItems() tea.Cmd {
	return func() tea.Msg {
		active, err := m.engine.ActiveItems(m.ctx)
		if err != nil {
			return itemsFetchedMsg{err: err}
		}
		archived, err := m.engine.ArchivedItems(m.ctx)
		return itemsFetchedMsg{active: active, archived: archived, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	key := m.selectedItem.Key
	return func() tea.Msg {
		return syncCompleteMsg{key: key, err: m.engine.SyncAll(m.ctx, key)}
	}
}

func (m *Model) renderList(l list.Model) string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", l.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync '%s' now?", m.selectedItem.Title))
	info := fmt.Sprintf("\nEntry: %s\nProgress: %d\nTrackers: %d\n",
		m.selectedItem.Key, m.selectedItem.SyncPoint(), len(m.selectedItem.Bindings))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	if m.syncErr != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to go back, q to quit", m.syncErr))
	}

	title := styles.ok.Render("✓ Sync Complete")
	helpKeys := []key.Binding{m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
