// Package flow aggregates normalized rows into the weighted nodes and flows
// of a Sankey diagram.
//
// A [Node] is a distinct label at one stage, weighted by the total weight of
// the rows passing through it. A [Flow] is a distinct (source, target) label
// pair between two adjacent stages, weighted by the rows making that
// transition. Both are listed in first-occurrence order, which is the order
// every later stage of the pipeline breaks ties with.
package flow

import (
	"github.com/matzehuels/sankey/pkg/table"
)

// Node is a distinct label at a given stage.
type Node struct {
	Stage  int
	Label  string
	Weight float64
	Index  int // first-occurrence position within the stage
}

// Flow is an aggregated transition from a label at Stage to a label at
// Stage+1.
type Flow struct {
	Stage  int // source stage
	Source string
	Target string
	Weight float64
	Index  int // first-occurrence position within the transition
}

// Stage is one column of the diagram.
type Stage struct {
	Index int
	Name  string
	Nodes []Node
	Total float64
}

// Graph is the aggregated form of a table.
type Graph struct {
	Stages []Stage
	// Transitions[i] holds the flows from stage i to stage i+1.
	Transitions [][]Flow
	// Labels lists every distinct label across all stages in row-major
	// first-occurrence order.
	Labels []string
	// Total is the summed weight of all rows.
	Total float64

	nodeIdx []map[string]int
}

type pair struct{ source, target string }

// Aggregate groups the rows of t by stage label and by adjacent label pair.
// t is expected to have passed [table.Normalize].
func Aggregate(t *table.Table) *Graph {
	n := t.Stages()
	g := &Graph{
		Stages:      make([]Stage, n),
		Transitions: make([][]Flow, max(n-1, 0)),
		nodeIdx:     make([]map[string]int, n),
	}
	flowIdx := make([]map[pair]int, max(n-1, 0))
	seen := make(map[string]struct{})

	for s := range n {
		g.Stages[s] = Stage{Index: s, Name: t.StageNames[s]}
		g.nodeIdx[s] = make(map[string]int)
	}
	for s := range flowIdx {
		flowIdx[s] = make(map[pair]int)
	}

	for _, row := range t.Rows {
		g.Total += row.Weight
		for s, label := range row.Labels {
			if _, ok := seen[label]; !ok {
				seen[label] = struct{}{}
				g.Labels = append(g.Labels, label)
			}

			st := &g.Stages[s]
			st.Total += row.Weight
			i, ok := g.nodeIdx[s][label]
			if !ok {
				i = len(st.Nodes)
				g.nodeIdx[s][label] = i
				st.Nodes = append(st.Nodes, Node{Stage: s, Label: label, Index: i})
			}
			st.Nodes[i].Weight += row.Weight

			if s == 0 {
				continue
			}
			key := pair{row.Labels[s-1], label}
			fi, ok := flowIdx[s-1][key]
			if !ok {
				fi = len(g.Transitions[s-1])
				flowIdx[s-1][key] = fi
				g.Transitions[s-1] = append(g.Transitions[s-1], Flow{
					Stage: s - 1, Source: key.source, Target: key.target, Index: fi,
				})
			}
			g.Transitions[s-1][fi].Weight += row.Weight
		}
	}
	return g
}

// Node looks up the node with label at stage.
func (g *Graph) Node(stage int, label string) (Node, bool) {
	if stage < 0 || stage >= len(g.Stages) {
		return Node{}, false
	}
	i, ok := g.nodeIdx[stage][label]
	if !ok {
		return Node{}, false
	}
	return g.Stages[stage].Nodes[i], true
}

// MaxStageTotal returns the largest stage total. Every row passes through
// every stage, so all stages carry the same total in practice; the maximum
// is what the layout scales against.
func (g *Graph) MaxStageTotal() float64 {
	var m float64
	for _, s := range g.Stages {
		m = max(m, s.Total)
	}
	return m
}

// Outgoing returns the flows leaving label at stage, in first-occurrence
// order.
func (g *Graph) Outgoing(stage int, label string) []Flow {
	if stage < 0 || stage >= len(g.Transitions) {
		return nil
	}
	var out []Flow
	for _, f := range g.Transitions[stage] {
		if f.Source == label {
			out = append(out, f)
		}
	}
	return out
}

// Incoming returns the flows entering label at stage, in first-occurrence
// order.
func (g *Graph) Incoming(stage int, label string) []Flow {
	if stage < 1 || stage > len(g.Transitions) {
		return nil
	}
	var in []Flow
	for _, f := range g.Transitions[stage-1] {
		if f.Target == label {
			in = append(in, f)
		}
	}
	return in
}

// FlowCount returns the number of flows across all transitions.
func (g *Graph) FlowCount() int {
	var n int
	for _, tr := range g.Transitions {
		n += len(tr)
	}
	return n
}

// NodeCount returns the number of nodes across all stages.
func (g *Graph) NodeCount() int {
	var n int
	for _, s := range g.Stages {
		n += len(s.Nodes)
	}
	return n
}
