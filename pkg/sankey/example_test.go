package sankey_test

import (
	"fmt"

	"github.com/matzehuels/sankey/pkg/sankey"
	"github.com/matzehuels/sankey/pkg/table"
)

func ExampleCompute() {
	l, err := sankey.Compute([][]any{
		{1, "a", "x"},
		{2, "b", "x"},
		{1, "a", "y"},
	}, sankey.WithSize(400, 232))
	if err != nil {
		panic(err)
	}

	for _, col := range l.Columns {
		for _, n := range col.Nodes {
			fmt.Printf("stage %d %s: %.0f\n", n.Stage, n.Label, n.Height())
		}
	}
	// Output:
	// stage 0 a: 92
	// stage 0 b: 92
	// stage 1 x: 138
	// stage 1 y: 46
}

func ExampleDraw() {
	frame := table.NewFrame(
		[]string{"people", "from", "to"},
		[][]any{{10, "home", "work"}, {4, "home", "gym"}},
	)

	d, err := sankey.Draw(nil, frame)
	if err != nil {
		panic(err)
	}
	fmt.Println(d.Layout.Columns[0].Name, "->", d.Layout.Columns[1].Name)
	fmt.Println(len(d.Colors), "colors")
	// Output:
	// from -> to
	// 3 colors
}
