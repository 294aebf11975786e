package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/pipeline"
)

// exportFlags holds the command-line flags for the export command. Unset
// flags fall back to the [export] section of the config.
type exportFlags struct {
	output     string
	formats    string
	padding    float64
	scale      float64
	background string
	nodeWidth  float64
	nodeHeight float64
	detailed   bool
	pinned     bool
	refresh    bool
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a diagram to PNG, SVG, DOT, JSON or YAML",
		Long: `Render a diagram to one or more formats.

PNG is a raster capture of the whole canvas with a padded border. SVG and DOT
are node-link renderings laid out by Graphviz (use --pinned to keep canvas
positions). JSON and YAML write the document itself.

Rendered artifacts are cached; use --refresh to render again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config().PipelineOptions(parseFormats(flags.formats))
			f := cmd.Flags()
			if f.Changed("padding") {
				opts.Padding = flags.padding
			}
			if f.Changed("scale") {
				opts.Scale = flags.scale
			}
			if f.Changed("background") {
				opts.Background = flags.background
			}
			if f.Changed("node-width") {
				opts.NodeWidth = flags.nodeWidth
			}
			if f.Changed("node-height") {
				opts.NodeHeight = flags.nodeHeight
			}
			if f.Changed("detailed") {
				opts.Detailed = flags.detailed
			}
			opts.Pinned = flags.pinned
			opts.Refresh = flags.refresh
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runExport(cmd, &flags, opts)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): png (default), svg, dot, json, yaml (comma-separated)")
	cmd.Flags().Float64Var(&flags.padding, "padding", 0, "PNG margin around the diagram in canvas units (default 64)")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "PNG pixels per canvas unit (default 1)")
	cmd.Flags().StringVar(&flags.background, "background", "", "PNG background color (default #ffffff)")
	cmd.Flags().Float64Var(&flags.nodeWidth, "node-width", 0, "width assumed for unmeasured nodes")
	cmd.Flags().Float64Var(&flags.nodeHeight, "node-height", 0, "height assumed for unmeasured nodes")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include classifications in SVG/DOT labels")
	cmd.Flags().BoolVar(&flags.pinned, "pinned", false, "keep canvas positions in SVG")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(pipeline.ValidFormats))
		for f := range pipeline.ValidFormats {
			formats = append(formats, f)
		}
		slices.Sort(formats)
		return formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, flags *exportFlags, opts pipeline.Options) error {
	ctx := cmd.Context()
	input := c.document()

	ctrl, err := c.openDocument(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	s := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	s.Start()
	res, err := runner.Execute(ctx, ctrl.Snapshot(), ctrl.Rates(), opts)
	if err != nil {
		s.StopWithError("Export failed")
		return err
	}
	s.Stop()

	base := basePath(flags.output, input)
	for _, format := range opts.Formats {
		path := base + pipeline.Extension(format)
		if len(opts.Formats) == 1 && flags.output != "" {
			path = flags.output
		}
		if path == input {
			return fmt.Errorf("refusing to overwrite the source document %s", input)
		}
		if err := writeOutput(path, res.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, cacheStatus(res.CacheInfo))
	prog.done(fmt.Sprintf("Exported %d format(s)", len(opts.Formats)))
	return nil
}

// basePath derives the output base from the output flag and the input path.
// Known format extensions are stripped from both.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	ext := filepath.Ext(p)
	if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] || ext == ".yml" {
		return strings.TrimSuffix(p, ext)
	}
	return p
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.RenderHit:
		return iconCached
	case len(ci.Hits) > 0:
		return "partly " + iconCached
	}
	return iconFresh
}
