package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/seatwatch/seatwatch/internal/target"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched targets and their status",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	soldOutStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	targets := registry.List()
	if len(targets) == 0 {
		fmt.Println("No targets. Add one with 'seatwatch add <url>'.")
		return nil
	}

	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, []string{
			t.ID,
			truncate(t.Name, 40),
			statusLabel(t),
			onSaleLabel(t),
			fmt.Sprintf("%d", t.Status.CheckCount),
			lastCheckedLabel(t),
		})
	}

	printColumns([]string{"ID", "NAME", "STATUS", "ON SALE", "CHECKS", "LAST CHECKED"}, rows)
	return nil
}

func statusLabel(t *target.Target) string {
	switch {
	case !t.TrackingEnabled:
		return disabledStyle.Render("disabled")
	case t.Status.SoldOut:
		return soldOutStyle.Render("sold out")
	case t.Status.Available:
		return availableStyle.Render("AVAILABLE")
	case t.Status.ConsecutiveErrors > 0:
		return errorStyle.Render(fmt.Sprintf("erroring (%d)", t.Status.ConsecutiveErrors))
	default:
		return "watching"
	}
}

func onSaleLabel(t *target.Target) string {
	if t.PredictedOnSale == nil {
		return "-"
	}
	return t.PredictedOnSale.Format("2006-01-02 15:04")
}

func lastCheckedLabel(t *target.Target) string {
	if t.Status.LastChecked == nil {
		return "never"
	}
	return t.Status.LastChecked.Format("15:04:05")
}

// truncate shortens a name to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// printColumns renders an aligned table. Widths are computed on the visible
// text, so styled cells still line up.
func printColumns(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(headerStyle.Render(h))
		b.WriteString(strings.Repeat(" ", widths[i]-len(h)+2))
	}
	fmt.Println(strings.TrimRight(b.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}
}
