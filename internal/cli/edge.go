package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// connectCommand creates the "connect" command.
func (c *CLI) connectCommand() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Connect two work items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := errors.ValidateNodeID(id); err != nil {
					return err
				}
			}
			var e graph.Edge
			err := c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				var err error
				if e, err = ctrl.Connect(args[0], args[1]); err != nil {
					return err
				}
				if comment != "" {
					return ctrl.SetEdgeComment(e.ID, comment)
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Connected %s %s %s", args[0], iconArrow, args[1])
			printKeyValue("Edge", e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "comment shown on the connection")
	return cmd
}

// edgeCommand creates the "edge" command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Inspect and annotate connections",
	}
	cmd.AddCommand(c.edgeCommentCommand())
	cmd.AddCommand(c.edgeListCommand())
	return cmd
}

func (c *CLI) edgeCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <edge-id> <text>",
		Short: "Set the comment of a connection",
		Long:  `Set the comment of a connection. The comment is also shown as its label. An empty text clears it.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				// Goes through the edge dialog so the text is validated like
				// an interactive edit.
				if _, err := ctrl.EdgeDoubleClick(args[0]); err != nil {
					return err
				}
				if err := ctrl.SetField(controller.FieldComment, args[1]); err != nil {
					ctrl.Cancel()
					return err
				}
				return ctrl.Commit()
			})
			if err != nil {
				return err
			}
			printSuccess("Updated edge %s", StyleHighlight.Render(args[0]))
			return nil
		},
	}
}

func (c *CLI) edgeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.openDocument(cmd.Context(), c.document())
			if err != nil {
				return err
			}
			fmt.Println(edgeTable(ctrl.Snapshot().Edges))
			return nil
		},
	}
}

func edgeTable(edges []graph.Edge) string {
	rows := make([][]string, len(edges))
	for i, e := range edges {
		rows[i] = []string{e.ID, e.Source, e.Target, e.Comment}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Source", "Target", "Comment").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
