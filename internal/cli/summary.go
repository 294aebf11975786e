package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/estimate"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 150 * time.Millisecond

// summaryCommand creates the "summary" command.
func (c *CLI) summaryCommand() *cobra.Command {
	var watch, asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the cost estimate of a diagram",
		Long: `Print the three estimate tables of a diagram: work classified as new,
work classified as adapt, and all work on items flagged for uploading.

With --watch the tables are reprinted whenever the document changes on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.document()
			show := func() error {
				ctrl, err := c.openDocument(cmd.Context(), path)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(ctrl.Summary())
				}
				fmt.Println(renderEstimate(ctrl.Summary()))
				return nil
			}

			if err := show(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			logger := loggerFromContext(cmd.Context())
			printDetail("Watching %s (ctrl+c to stop)", path)
			return watchDocument(cmd.Context(), path, func() {
				printNewline()
				printInfo("%s changed at %s", path, time.Now().Format("15:04:05"))
				if err := show(); err != nil {
					logger.Error("reload failed", "err", err)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reprint when the document changes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the estimate as JSON")
	return cmd
}

// watchDocument calls onChange after path is written, until ctx is done.
//
// The parent directory is watched rather than the file because many editors
// save by writing a temporary file and renaming it over the original.
func watchDocument(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		case <-pending:
			pending = nil
			onChange()
		}
	}
}

// renderEstimate lays out the three summary tables.
func renderEstimate(e estimate.Estimate) string {
	var b strings.Builder
	b.WriteString(estimateTable("New", e.New))
	b.WriteString("\n")
	b.WriteString(estimateTable("Adapt", e.Adapt))
	b.WriteString("\n")
	b.WriteString(estimateTable("Uploading", e.Uploading))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("Total ") + StyleNumber.Bold(true).Render(formatAmount(e.New.Total+e.Adapt.Total)))
	return b.String()
}

func estimateTable(title string, t estimate.Table) string {
	rows := make([][]string, 0, len(t.Rows)+1)
	for _, r := range t.Rows {
		rows = append(rows, []string{string(r.Key), formatAmount(r.Rate), fmt.Sprint(r.Quantity), formatAmount(r.Sum)})
	}
	rows = append(rows, []string{"Total", "", "", formatAmount(t.Total)})
	last := len(rows) - 1

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Work", "Rate", "Qty", "Sum").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle()
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last:
				return s.Bold(true).Foreground(colorCyan)
			case col == 2 && t.Rows[row].Quantity == 0:
				return s.Foreground(colorDim)
			}
			return s
		})
	return StyleTitle.Render(title) + "\n" + tbl.Render()
}
