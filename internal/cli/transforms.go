package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// transformsCommand creates the transforms listing command.
func (c *CLI) transformsCommand() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "transforms",
		Short: "List the registered transforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.newRegistry()
			if err != nil {
				return err
			}

			names := reg.Names()
			if tag != "" {
				names = reg.WithTag(tag)
			}
			if len(names) == 0 {
				printInfo("No transforms registered")
				return nil
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			rows := [][]string{}
			for _, name := range names {
				m, ok := reg.Get(name)
				if !ok {
					continue
				}
				rows = append(rows, []string{
					m.Name,
					strconv.Itoa(m.Priority),
					strings.Join(m.Requires, ", "),
					m.Describe(),
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Name", "Priority", "Requires", "Description").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					if col == 0 {
						return StyleHighlight
					}
					return StyleValue
				})

			fmt.Println(t.Render())
			printNextStep("Apply one", "treemark convert doc.md -t "+names[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only list transforms with this tag")
	return cmd
}
