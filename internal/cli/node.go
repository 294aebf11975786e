package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// nodeCommand creates the "node" command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, edit and remove work items",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeEditCommand())
	cmd.AddCommand(c.nodeImageCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeListCommand())

	return cmd
}

// nodeFlags are the editable fields, in the order the edit dialog shows them.
type nodeFlags struct {
	values map[string]*string
}

func addNodeFlags(cmd *cobra.Command) *nodeFlags {
	f := &nodeFlags{values: make(map[string]*string, len(controller.NodeFields))}
	usage := map[string]string{
		controller.FieldLabel:            "display name",
		controller.FieldComment:          "free-form note",
		controller.FieldUploading:        "whether the work includes uploading content: yes, no",
		controller.FieldDesignType:       "design work type: new, adapt",
		controller.FieldDesignDifficulty: "design difficulty: simple, medium, complex",
		controller.FieldCodingType:       "coding work type: new, adapt",
		controller.FieldCodingDifficulty: "coding difficulty: simple, medium, complex",
	}
	for _, field := range controller.NodeFields {
		if field == controller.FieldImage {
			continue
		}
		f.values[field] = cmd.Flags().String(field, "", usage[field])
	}
	return f
}

// apply sets every flag the user passed through the node dialog and commits
// it, so the same validation as the interactive editor applies.
func (f *nodeFlags) apply(cmd *cobra.Command, ctrl *controller.Controller, id string) error {
	if _, err := ctrl.NodeDoubleClick(id); err != nil {
		return err
	}
	for _, field := range controller.NodeFields {
		v, ok := f.values[field]
		if !ok || !cmd.Flags().Changed(field) {
			continue
		}
		if err := ctrl.SetField(field, *v); err != nil {
			ctrl.Cancel()
			return err
		}
	}
	return ctrl.Commit()
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var parent string
	var fields *nodeFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a work item below a parent",
		Long: `Add a work item one row below its parent and connect parent to child.
Without --parent the last work item in the diagram is the parent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var added graph.Node
			err := c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				var err error
				if parent != "" {
					if err := errors.ValidateNodeID(parent); err != nil {
						return err
					}
					added, err = ctrl.AddChildOf(parent)
				} else {
					added, err = ctrl.AddChild()
				}
				if err != nil {
					return err
				}
				if err := fields.apply(cmd, ctrl, added.ID); err != nil {
					return err
				}
				added, _ = ctrl.Node(added.ID)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Added node %s", StyleHighlight.Render(added.ID))
			printKeyValue("Label", added.DisplayLabel())
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent node id (default: last node)")
	fields = addNodeFlags(cmd)
	return cmd
}

func (c *CLI) nodeEditCommand() *cobra.Command {
	var fields *nodeFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errors.ValidateNodeID(id); err != nil {
				return err
			}
			err := c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				return fields.apply(cmd, ctrl, id)
			})
			if err != nil {
				return err
			}
			printSuccess("Updated node %s", StyleHighlight.Render(id))
			return nil
		},
	}

	fields = addNodeFlags(cmd)
	return cmd
}

func (c *CLI) nodeImageCommand() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "image <id> [file]",
		Short: "Attach an image to a work item",
		Long: `Attach a PNG, JPEG or GIF image to a work item. The image is stored
inside the document as a data URI. Use --clear to remove it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errors.ValidateNodeID(id); err != nil {
				return err
			}
			if remove {
				return c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
					if err := ctrl.ClearImage(id); err != nil {
						return err
					}
					printSuccess("Removed image from node %s", id)
					return nil
				})
			}
			if len(args) < 2 {
				return errors.New(errors.ErrCodeInvalidInput, "an image file is required (or --clear)")
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				if os.IsNotExist(err) {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", args[1])
				}
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			return c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				return attachImage(cmd.Context(), ctrl, id, data)
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "clear", false, "remove the image")
	return cmd
}

// attachImage decodes on a worker goroutine and applies the result on the
// caller's goroutine, the same way an interactive front-end does.
func attachImage(ctx context.Context, ctrl *controller.Controller, id string, data []byte) error {
	if _, ok := ctrl.Node(id); !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	job := ctrl.RequestImage(controller.ImageTarget{NodeID: id}, data)

	s := newSpinnerWithContext(ctx, "Decoding image...")
	s.Start()
	var res controller.ImageResult
	select {
	case res = <-job.Start():
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	}

	applied, err := ctrl.CompleteImage(res)
	if err != nil {
		s.StopWithError("Image could not be decoded")
		return err
	}
	if !applied {
		s.Stop()
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	s.StopWithSuccess("Attached image to node " + id)
	return nil
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a work item and its connections",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var removed int
			err := c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				changes, err := ctrl.DeleteNode(id)
				removed = len(changes) - 1
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Removed node %s", StyleHighlight.Render(id))
			if removed > 0 {
				printDetail("%d connection(s) removed", removed)
			}
			return nil
		},
	}
}

func (c *CLI) nodeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List work items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.openDocument(cmd.Context(), c.document())
			if err != nil {
				return err
			}
			snap := ctrl.Snapshot()
			fmt.Println(nodeTable(snap.Nodes))
			printStats(len(snap.Nodes), len(snap.Edges))
			return nil
		},
	}
}

// nodeTable renders work items as a bordered table.
func nodeTable(nodes []graph.Node) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		image := ""
		if n.Data.Image != "" {
			image = iconSuccess
		}
		rows[i] = []string{
			n.ID,
			n.DisplayLabel(),
			classLabel(n.Data.Design),
			classLabel(n.Data.Coding),
			string(n.Data.Uploading),
			image,
		}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Design", "Coding", "Upload", "Image").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func classLabel(c graph.Classification) string {
	return string(c.Type) + "/" + string(c.Difficulty)
}
