package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/errors"
)

// newCommand creates the "new" command, which writes a fresh document.
func (c *CLI) newCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a diagram with a single root work item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.document()
			if err := errors.ValidatePath(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}

			ctrl, err := c.newDocument()
			if err != nil {
				return err
			}
			if err := saveDocument(cmd.Context(), ctrl, path); err != nil {
				return err
			}

			printSuccess("Created %s", path)
			printNextStep("Add a work item", appName+" node add --doc "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	return cmd
}
