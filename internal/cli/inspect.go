package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

type inspectFlags struct {
	inputFormat string
	layout      bool // include node geometry
	interactive bool // browse nodes in a terminal UI
	width       float64
	height      float64
	order       string
}

// inspectCommand creates the inspect command, which prints the aggregated
// stages, nodes and flows of a table.
func (c *CLI) inspectCommand() *cobra.Command {
	var f inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the stages, nodes and flows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Input:       args[0],
				InputFormat: f.inputFormat,
				Width:       f.width,
				Height:      f.height,
				Order:       f.order,
				NoCache:     true,
			}
			if f.interactive {
				return c.runBrowse(cmd.Context(), opts)
			}
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), opts, f.layout)
		},
	}

	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "input format: csv, json, yaml, toml (default: from extension)")
	cmd.Flags().BoolVar(&f.layout, "layout", false, "include node positions")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "browse stages and nodes interactively")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "frame width for --layout")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "frame height for --layout")
	cmd.Flags().StringVar(&f.order, "order", "", "node order for --layout: first-seen (default), label, weight")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, out io.Writer, opts pipeline.Options, withLayout bool) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	t, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	g, l, err := runner.ComputeLayout(ctx, t, opts)
	if err != nil {
		return err
	}

	printInfo(out, "%s: %d rows, %d stages, total weight %s",
		opts.Input, len(t.Rows), t.Stages(), formatWeight(g.Total))
	printTable(out, "Stages", []string{"#", "Name", "Nodes", "Total"}, stageRows(g))
	if withLayout {
		printDetail(out, "scale %.4f per unit of weight", l.Scale)
		printTable(out, "Nodes", []string{"Stage", "Label", "Weight", "Share", "X", "Y0", "Y1"}, nodeRows(g, &l))
	} else {
		printTable(out, "Nodes", []string{"Stage", "Label", "Weight", "Share"}, nodeRows(g, nil))
	}
	printTable(out, "Flows", []string{"Stage", "Source", "Target", "Weight"}, flowRows(g))
	return nil
}

// runBrowse opens the interactive node browser on the aggregated table.
func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	t, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(NewNodeBrowserModel(flow.Aggregate(t)), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("node browser: %w", err)
	}
	return nil
}

func stageRows(g *flow.Graph) [][]string {
	rows := make([][]string, 0, len(g.Stages))
	for _, st := range g.Stages {
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			st.Name,
			strconv.Itoa(len(st.Nodes)),
			formatWeight(st.Total),
		})
	}
	return rows
}

// nodeRows lists nodes in stacking order when l is set, first-seen
// order otherwise.
func nodeRows(g *flow.Graph, l *layout.Layout) [][]string {
	var rows [][]string
	for _, st := range g.Stages {
		if l != nil {
			for _, box := range l.Columns[st.Index].Nodes {
				rows = append(rows, []string{
					strconv.Itoa(st.Index),
					box.Label,
					formatWeight(box.Weight),
					share(box.Weight, st.Total),
					fmt.Sprintf("%.1f", box.X0),
					fmt.Sprintf("%.1f", box.Y0),
					fmt.Sprintf("%.1f", box.Y1),
				})
			}
			continue
		}
		for _, n := range st.Nodes {
			rows = append(rows, []string{
				strconv.Itoa(st.Index),
				n.Label,
				formatWeight(n.Weight),
				share(n.Weight, st.Total),
			})
		}
	}
	return rows
}

func flowRows(g *flow.Graph) [][]string {
	var rows [][]string
	for _, flows := range g.Transitions {
		for _, f := range flows {
			rows = append(rows, []string{
				strconv.Itoa(f.Stage),
				f.Source,
				iconArrow + " " + f.Target,
				formatWeight(f.Weight),
			})
		}
	}
	return rows
}

func share(w, total float64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*w/total)
}
