package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))            // purple
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	streamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))           // grey
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
)

const (
	barEdge = "•"
	barFill = "━"
)

// statusLook is how a job line renders in a given status.
type statusLook struct {
	style  lipgloss.Style
	symbol string
}

var statusLooks = map[string]statusLook{
	StatusPending: {lipgloss.NewStyle().Foreground(lipgloss.Color("12")), "◉"}, // blue
	StatusActive:  {lipgloss.NewStyle().Foreground(lipgloss.Color("14")), "→"}, // cyan
	StatusSuccess: {lipgloss.NewStyle().Foreground(lipgloss.Color("37")), "✓"}, // dark green
	StatusError:   {lipgloss.NewStyle().Foreground(lipgloss.Color("9")), "✗"},  // red
}

func lookFor(status string) statusLook {
	if look, ok := statusLooks[status]; ok {
		return look
	}
	return statusLooks[StatusPending]
}

func PrintError(text string) {
	fmt.Println(lookFor(StatusError).style.Render(text))
}
func PrintHeader(text string) {
	fmt.Println(headerStyle.Render(text))
}

// PrintField prints an indented "label value" pair.
func PrintField(label, value string) {
	fmt.Printf("  %s %s\n", detailStyle.Render(label), infoStyle.Render(value))
}
func FError(text string) string {
	return lookFor(StatusError).style.Render(text)
}
