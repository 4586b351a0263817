// Package tui holds pythrun's single interactive surface: the
// continue/abort prompt shown when some dependency installs fail.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(1, 3)

	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("208"))

	failedItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	dialogButtonStyle = lipgloss.NewStyle().
				Padding(0, 3).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("238"))

	dialogActiveButtonStyle = lipgloss.NewStyle().
				Padding(0, 3).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("160")).
				Bold(true)
)

// confirmModel is a yes/no prompt listing failed packages.
//
// Navigation: left/right/tab move focus between the Yes and No
// buttons, enter activates the focused button, and y/n/esc are
// shortcut accelerators. Focus starts on No — the safe choice when the
// alternative is running a script with known-missing dependencies.
type confirmModel struct {
	failed    []string
	focusYes  bool
	confirmed bool
	done      bool
}

func newConfirmModel(failed []string) confirmModel {
	return confirmModel{failed: failed}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmYesKey):
		m.confirmed = true
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, confirmNoKey), key.Matches(keyMsg, confirmQuitKey):
		m.confirmed = false
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, confirmEnterKey):
		m.confirmed = m.focusYes
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, confirmMoveKey):
		m.focusYes = !m.focusYes
		return m, nil
	}

	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	title := dialogTitleStyle.Render(
		fmt.Sprintf("%d package(s) failed to install", len(m.failed)))

	var items string
	for _, name := range m.failed {
		items += failedItemStyle.Render("  ✗ "+name) + "\n"
	}

	question := "Run the script anyway?"

	var yesBtn, noBtn string
	if m.focusYes {
		yesBtn = dialogActiveButtonStyle.Render("Yes")
		noBtn = dialogButtonStyle.Render("No")
	} else {
		yesBtn = dialogButtonStyle.Render("Yes")
		noBtn = dialogActiveButtonStyle.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, "  ", noBtn)

	ui := lipgloss.JoinVertical(lipgloss.Left, title, "", items+question, "", buttons)
	return dialogBoxStyle.Render(ui) + "\n"
}

// ConfirmInstallFailures shows the prompt and reports the decision.
// The prompt renders on stderr so the script's stdout stays clean.
func ConfirmInstallFailures(failed []string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(failed), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model type %T", final)
	}
	return m.confirmed, nil
}

// Key bindings for the confirm prompt.
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "continue"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "abort"),
	)
	confirmQuitKey = key.NewBinding(
		key.WithKeys("esc", "ctrl+c", "q"),
	)
	confirmEnterKey = key.NewBinding(
		key.WithKeys("enter"),
	)
	confirmMoveKey = key.NewBinding(
		key.WithKeys("left", "right", "tab", "shift+tab", "h", "l"),
	)
)
