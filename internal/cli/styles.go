package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#04B575")
	warningColor = lipgloss.Color("#FFA500")
	infoColor    = lipgloss.Color("#3B82F6")

	successStyle = lipgloss.NewStyle().Foreground(primaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	infoStyle    = lipgloss.NewStyle().Foreground(infoColor)
	headerStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf(format, args...)))
}
