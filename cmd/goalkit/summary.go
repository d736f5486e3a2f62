package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// printSummary writes the one-line step result to stdout. Logs go to stderr;
// stdout carries only these summaries so scripts can capture them.
func printSummary(text string) {
	fmt.Println(okStyle.Render("ok") + " " + text)
}

func printWarn(text string) {
	fmt.Println(warnStyle.Render("!!") + " " + text)
}

func printDim(text string) {
	fmt.Println(dimStyle.Render(text))
}
