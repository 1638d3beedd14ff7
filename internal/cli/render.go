package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/flownet/pkg/io"
	"github.com/matzehuels/flownet/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path, "-" for stdout
	format   string // "svg" or "dot"
	mst      bool   // overlay the spanning tree
	root     int    // MST root, used when the flag is set
	flow     string // "S,T" max-flow overlay
	detailed bool   // include node values in labels
	refresh  bool   // ignore cached renders
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.DefaultRenderFormat}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph as SVG or Graphviz DOT",
		Long: `Render a graph with Graphviz.

--mst highlights the minimum spanning tree; --flow S,T labels every edge
with flow/capacity for the maximum flow from S to T. The two overlays are
mutually exclusive.`,
		Example: `  flownet render network.json
  flownet render network.json --mst -o tree.svg
  flownet render network.toml --flow 1,6 --format dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts.output, ropts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(pipeline.RenderFormats, ", "))
	cmd.Flags().BoolVar(&opts.mst, "mst", false, "highlight the minimum spanning tree")
	cmd.Flags().IntVar(&opts.root, "root", 0, "MST root node (default: first node)")
	cmd.Flags().StringVar(&opts.flow, "flow", "", "overlay the maximum flow from SOURCE,SINK")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node values in labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached renders")

	return cmd
}

func (o renderOpts) pipelineOptions(cmd *cobra.Command) (pipeline.RenderOptions, error) {
	ropts := pipeline.RenderOptions{
		Format:   o.format,
		MST:      o.mst,
		Detailed: o.detailed,
		Refresh:  o.refresh,
	}
	if cmd.Flags().Changed("root") {
		root := o.root
		ropts.Root = &root
	}
	if o.flow != "" {
		src, sink, err := parseTerminals(o.flow)
		if err != nil {
			return ropts, err
		}
		ropts.Flow, ropts.Source, ropts.Sink = true, src, sink
	}
	if err := ropts.Validate(); err != nil {
		return ropts, err
	}
	return ropts, nil
}

func (c *CLI) runRender(cmd *cobra.Command, path, output string, opts pipeline.RenderOptions) error {
	ctx := cmdContext(cmd)
	logger := loggerFromContext(ctx)

	doc, err := pio.ImportFile(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	data, cached, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	prog.done("Rendered "+opts.Format, "bytes", len(data), "cached", cached)

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if output == "" {
		output = outputPath(path, opts.Format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %s", filepath.Base(path))
	printStats(w, len(doc.Nodes), len(doc.Edges), cached)
	printFile(w, output)
	return nil
}

// outputPath replaces the input extension with the render format.
func outputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
