package pipeline

import (
	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/table"
)

// ComputeLayout aggregates t into a flow graph and lays it out.
func ComputeLayout(t *table.Table, opts Options) (*flow.Graph, layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Layout{}, err
	}
	if err := t.Validate(); err != nil {
		return nil, layout.Layout{}, err
	}
	g := flow.Aggregate(t)
	l, err := layout.Compute(g, opts.LayoutOptions())
	if err != nil {
		return nil, layout.Layout{}, err
	}
	return g, l, nil
}
