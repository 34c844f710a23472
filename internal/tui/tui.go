package tui

import (
	"fmt"
	"os"

	"clout/internal/core"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// model holds the state of the post review TUI: the stored posts on the
// left, the selected post's body on the right.
type model struct {
	posts       []core.PostRecord
	selectedIdx int
	width       int
	height      int
	quitting    bool
}

// initialModel returns the initial state of the TUI model.
func initialModel(posts []core.PostRecord) model {
	return model{
		posts:       posts,
		selectedIdx: 0,
	}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.posts)-1 {
				m.selectedIdx++
			}
		}
	}

	return m, cmd
}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	// Basic styles
	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)

	listContent := "Generated Posts\n\n"
	if len(m.posts) == 0 {
		listContent += "No posts stored yet. Run the pipeline first."
	} else {
		for i, post := range m.posts {
			cursor := " "
			if i == m.selectedIdx {
				cursor = ">"
			}
			listContent += fmt.Sprintf("%s [%s] %s\n", cursor, post.Variant, post.Headline)
		}
	}

	detailContent := "Post Body\n\n"
	if len(m.posts) == 0 || m.selectedIdx >= len(m.posts) {
		detailContent += "Nothing selected."
	} else {
		selected := m.posts[m.selectedIdx]
		detailContent += fmt.Sprintf("Source: %s\n\n%s", selected.SourceURL, selected.Body)
	}

	// Layout
	leftPane := listStyle.Render(listContent)
	rightPane := detailStyle.Render(detailContent)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	help := "\n\n[↑/k] Up | [↓/j] Down | [q] Quit"

	return docStyle.Render(mainContent + help)
}

// StartTUI initializes and starts the Bubble Tea application over the
// stored posts.
func StartTUI(posts []core.PostRecord) {
	p := tea.NewProgram(initialModel(posts), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
