package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"ccabi/internal/driver"
)

// Run renders progress on out until events is closed.
func Run(title string, files []string, events <-chan driver.Event, out io.Writer) error {
	_, err := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out)).Run()
	return err
}
