package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
)

// ratesCommand creates the "rates" command group.
func (c *CLI) ratesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show and change the rate table",
	}
	cmd.AddCommand(c.ratesShowCommand())
	cmd.AddCommand(c.ratesSetCommand())
	return cmd
}

func (c *CLI) ratesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the rate table of the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.openDocument(cmd.Context(), c.document())
			if err != nil {
				return err
			}
			fmt.Println(ratesTable(ctrl.Rates()))
			return nil
		},
	}
}

func (c *CLI) ratesSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <rate>",
		Short: "Change one rate, e.g. 'rates set Design-complex 320'",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			keys := make([]string, len(estimate.Keys))
			for i, k := range estimate.Keys {
				keys[i] = string(k)
			}
			return keys, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := estimate.ParseKey(args[0])
			if err != nil {
				return err
			}
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "invalid rate %q", args[1])
			}
			var total float64
			err = c.mutate(cmd.Context(), func(ctrl *controller.Controller) error {
				if err := ctrl.SetRate(key, v); err != nil {
					return err
				}
				sum := ctrl.Summary()
				total = sum.New.Total + sum.Adapt.Total
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("%s = %s", key, StyleNumber.Render(formatAmount(v)))
			printKeyValue("Total", formatAmount(total))
			return nil
		},
	}
}

func ratesTable(rates estimate.Rates) string {
	rows := make([][]string, len(estimate.Keys))
	for i, k := range estimate.Keys {
		note := ""
		if rates.Rate(k) != estimate.DefaultRate(k) {
			note = fmt.Sprintf("default %s", formatAmount(estimate.DefaultRate(k)))
		}
		rows[i] = []string{string(k), formatAmount(rates.Rate(k)), note}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Rate", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

