package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorAmber  = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle heads tables and panels.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight marks node and edge ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	StyleLink   = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim    = lipgloss.NewStyle().Foreground(colorDim)
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed  = lipgloss.NewStyle().Foreground(colorRed)
	styleWarn    = lipgloss.NewStyle().Foreground(colorAmber)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Foreground(colorBright)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Lines
// =============================================================================

func printStatus(icon lipgloss.Style, mark, format string, args ...any) {
	fmt.Println(icon.Render(mark) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus(styleOK, iconSuccess, format, args...) }
func printError(format string, args ...any)   { printStatus(styleFailed, iconError, format, args...) }
func printInfo(format string, args ...any)    { printStatus(styleNote, iconInfo, format, args...) }

func printWarning(format string, args ...any) {
	printStatus(styleWarn, iconWarning, "%s", styleWarn.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

// printStats prints node and edge counts followed by optional cache
// statuses, e.g. "3 nodes · 2 edges · cached".
func printStats(nodeCount, edgeCount int, status ...string) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
	}
	for _, st := range status {
		style := styleNote
		if strings.HasSuffix(st, iconCached) {
			style = styleOK
		}
		parts = append(parts, style.Render(st))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }

// formatAmount prints rates and sums without trailing zeros: 100, 62.5.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
