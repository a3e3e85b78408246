package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/steps"
)

// stepsCommand creates the steps command, which lists the step types.
func (c *CLI) stepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the available step types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Step types"))
			fmt.Println(stepTable(steps.NewRegistry().Types()))
			return nil
		},
	}
}

// stepTable renders step types as a table of id, required providers and
// description.
func stepTable(types []scheduler.StepType) string {
	rows := make([][]string, len(types))
	for i, t := range types {
		requires := "-"
		if len(t.Requires) > 0 {
			kinds := make([]string, len(t.Requires))
			for j, k := range t.Requires {
				kinds[j] = string(k)
			}
			requires = strings.Join(kinds, ", ")
		}
		rows[i] = []string{t.ID, requires, t.Description}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	idStyle := lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Step", "Requires", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return idStyle
			}
			return cellStyle
		}).
		Render()
}
