package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flownet/pkg/expr"
	pio "github.com/matzehuels/flownet/pkg/io"
)

// evalCommand creates the eval command.
func (c *CLI) evalCommand() *cobra.Command {
	var (
		vars        []string
		varsFile    string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate a capacity expression",
		Long: `Evaluate an arithmetic expression with + - * / ^, parentheses and
variables.

Variables come from --var NAME=VALUE flags and from the vars table of a
graph file given with --vars. Without an expression, lines are read from
stdin; "NAME = EXPR" lines define variables for the lines that follow.
-i starts an interactive prompt.`,
		Example: `  flownet eval "2 ^ 3 + 1"
  flownet eval "base * lanes" --var base=10 --var lanes=3
  flownet eval -i --vars network.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := newEvaluator(vars, varsFile)
			if err != nil {
				return err
			}

			switch {
			case len(args) == 1 && !interactive:
				v, err := ev.Evaluate(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fmtNum(v))
				return nil
			case interactive || isTerminal(cmd.InOrStdin()):
				return runREPL(cmd, ev)
			default:
				return evalStream(cmd.InOrStdin(), cmd.OutOrStdout(), ev)
			}
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "define a variable as NAME=VALUE (repeatable)")
	cmd.Flags().StringVar(&varsFile, "vars", "", "load variables from a graph file's vars table")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive prompt")

	return cmd
}

// newEvaluator seeds an evaluator from a graph file, then from flags.
func newEvaluator(pairs []string, path string) (*expr.Evaluator, error) {
	syms := map[string]float64{}
	if path != "" {
		doc, err := pio.ImportFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range doc.Vars {
			syms[k] = v
		}
	}
	flagVars, err := parseVars(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range flagVars {
		syms[k] = v
	}
	return expr.New(syms)
}

// evalLine evaluates one input line. "NAME = EXPR" assigns the result.
func evalLine(ev *expr.Evaluator, line string) (string, error) {
	if name, rhs, ok := strings.Cut(line, "="); ok {
		name = strings.TrimSpace(name)
		v, err := ev.Evaluate(rhs)
		if err != nil {
			return "", err
		}
		if err := ev.Set(name, v); err != nil {
			return "", err
		}
		return name + " = " + fmtNum(v), nil
	}
	v, err := ev.Evaluate(line)
	if err != nil {
		return "", err
	}
	return fmtNum(v), nil
}

// evalStream evaluates each non-empty line of r and stops at the first error.
func evalStream(r io.Reader, w io.Writer, ev *expr.Evaluator) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := evalLine(ev, line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		fmt.Fprintln(w, out)
	}
	return sc.Err()
}

func runREPL(cmd *cobra.Command, ev *expr.Evaluator) error {
	p := tea.NewProgram(newREPLModel(ev),
		tea.WithContext(cmdContext(cmd)),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := p.Run()
	return err
}

// sortedVars renders the symbol table as "name = value" lines.
func sortedVars(ev *expr.Evaluator) []string {
	syms := ev.Symbols()
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + " = " + fmtNum(syms[name])
	}
	return lines
}
