package command

// dashboard.go renders the category-distribution bar chart in the
// terminal.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"bookhub/internal/books"
	"bookhub/internal/session"
)

const chartWidth = 40

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true)
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	chartLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the books-per-category chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathDashboard); err != nil {
			return err
		}

		a.books.Refresh(cmd.Context())
		fmt.Print(renderChart(a.books.Books()))
		return nil
	},
}

func renderChart(list []books.Book) string {
	counts := books.CategoryDistribution(list)
	if len(counts) == 0 {
		return "No books to chart.\n"
	}

	maxCount := 0
	labelWidth := 0
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
		if len(c.Name) > labelWidth {
			labelWidth = len(c.Name)
		}
	}

	var b strings.Builder
	b.WriteString(chartTitleStyle.Render("Books per Category"))
	b.WriteString("\n\n")
	for _, c := range counts {
		width := c.Count * chartWidth / maxCount
		if width == 0 {
			width = 1
		}
		label := fmt.Sprintf("%-*s", labelWidth, c.Name)
		bar := strings.Repeat("█", width)
		b.WriteString(fmt.Sprintf("%s %s %d\n",
			chartLabelStyle.Render(label), chartBarStyle.Render(bar), c.Count))
	}
	return b.String()
}
