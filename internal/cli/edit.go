package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// editCommand creates the "edit" command, an interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit a diagram interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := c.document()
			ctrl, err := c.openDocument(ctx, path)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewEditorModel(ctx, ctrl, path), tea.WithAltScreen(), tea.WithContext(ctx))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditorModel); ok && m.Dirty() {
				printWarning("Discarded unsaved changes to %s", path)
			}
			return nil
		},
	}
}
