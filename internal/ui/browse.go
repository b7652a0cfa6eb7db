package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fetchmixes/internal/models"
)

// BrowseModel is a filterable list of stored sets.
type BrowseModel struct {
	list     list.Model
	keys     keyMap
	selected *models.PublishedSet
}

// NewBrowseModel creates a list titled title over sets.
func NewBrowseModel(title string, sets []models.PublishedSet) *BrowseModel {
	items := make([]list.Item, len(sets))
	for i, s := range sets {
		items[i] = setItem{set: s}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return &BrowseModel{list: l, keys: newKeyMap()}
}

// Selected returns the set chosen with enter, or nil.
func (m *BrowseModel) Selected() *models.PublishedSet {
	return m.selected
}

func (m *BrowseModel) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(setItem); ok {
				set := item.set
				m.selected = &set
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m *BrowseModel) View() string {
	return m.list.View()
}
