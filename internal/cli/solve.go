package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flownet/pkg/graph"
	pio "github.com/matzehuels/flownet/pkg/io"
	"github.com/matzehuels/flownet/pkg/pipeline"
)

// mstCommand creates the "mst" command.
func (c *CLI) mstCommand() *cobra.Command {
	var (
		root    int
		asJSON  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "mst [file]",
		Short: "Compute a minimum spanning tree",
		Long: `Compute a minimum spanning tree with Prim's algorithm.

Edge capacities are the weights. The tree is grown from --root, or from the
first node in the file, and follows edges in their stated direction, so it
spans only the nodes reachable from the root. Declare two-way links with
undirected = true or list both directions.`,
		Example: `  flownet mst network.json
  flownet mst network.toml --root 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Algorithm: graph.AlgorithmMST, Refresh: refresh}
			if cmd.Flags().Changed("root") {
				opts.Root = &root
			}
			return c.runSolve(cmd, args[0], opts, asJSON)
		},
	}

	cmd.Flags().IntVar(&root, "root", 0, "node to grow the tree from (default: first node)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

// maxflowCommand creates the "maxflow" command.
func (c *CLI) maxflowCommand() *cobra.Command {
	var (
		source, sink int
		asJSON       bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "maxflow [file]",
		Short: "Compute the maximum flow between two nodes",
		Long: `Compute the maximum flow from --source to --sink with Edmonds-Karp.

Augmenting paths only follow edges with residual capacity in their stated
direction; flow is never cancelled along a reverse edge.`,
		Example: `  flownet maxflow network.json --source 1 --sink 6
  flownet maxflow network.yaml --source 1 --sink 6 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Algorithm: graph.AlgorithmMaxFlow,
				Source:    source,
				Sink:      sink,
				Refresh:   refresh,
			}
			return c.runSolve(cmd, args[0], opts, asJSON)
		},
	}

	cmd.Flags().IntVar(&source, "source", 0, "source node ID")
	cmd.Flags().IntVar(&sink, "sink", 0, "sink node ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("sink")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, path string, opts pipeline.Options, asJSON bool) error {
	ctx := cmdContext(cmd)
	logger := loggerFromContext(ctx)

	doc, err := pio.ImportFile(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded graph", "file", path, "nodes", len(doc.Nodes), "edges", len(doc.Edges))

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Solve(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	prog.done("Solved "+opts.Algorithm, "cached", res.CacheHit)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "%s", res)
	printStats(w, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	switch {
	case res.MST != nil:
		printMSTTable(w, res.MST)
		if spanned := len(res.MST.Edges) + 1; spanned < res.Stats.NodeCount {
			printWarning(w, "tree spans %d of %d nodes; the rest are unreachable from node %d",
				spanned, res.Stats.NodeCount, res.MST.Root)
		}
	case res.Flow != nil:
		printFlowTable(w, res.Flow)
	}
	printNextStep(w, "Render it", renderHint(path, opts))
	return nil
}

func renderHint(path string, opts pipeline.Options) string {
	if opts.Algorithm == graph.AlgorithmMaxFlow {
		return fmt.Sprintf("flownet render %s --flow %d,%d", path, opts.Source, opts.Sink)
	}
	if opts.Root != nil {
		return fmt.Sprintf("flownet render %s --mst --root %d", path, *opts.Root)
	}
	return fmt.Sprintf("flownet render %s --mst", path)
}
