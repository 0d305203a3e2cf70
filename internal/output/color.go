package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"
)

// Styles holds the lipgloss styles for output formatting.
type Styles struct {
	Path  lipgloss.Style
	Label lipgloss.Style
	Size  lipgloss.Style
	Error lipgloss.Style
	Note  lipgloss.Style
}

// NewStyles creates the default color styles.
func NewStyles() Styles {
	return Styles{
		Path:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true), // magenta
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),            // cyan
		Size:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),            // green
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true), // bold red
		Note:  lipgloss.NewStyle().Faint(true),
	}
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{
		Path:  lipgloss.NewStyle(),
		Label: lipgloss.NewStyle(),
		Size:  lipgloss.NewStyle(),
		Error: lipgloss.NewStyle(),
		Note:  lipgloss.NewStyle(),
	}
}

// IsTerminal checks if the given file descriptor is a terminal using ioctl.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
