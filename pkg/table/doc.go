// Package table normalizes heterogeneous tabular input into the row-oriented
// form the rest of sankey works on.
//
// # Shape
//
// Column 0 holds the weight of each row; columns 1..N-1 hold one categorical
// label per stage, ordered left to right. At least two columns are required.
//
//	count  from   to
//	1      a      x
//	2      b      x
//	1      a      y
//
// # Adapters
//
// [Normalize] accepts three kinds of input and picks the adapter by
// capability:
//
//   - labeled frames ([Labeled], e.g. [Frame]) keep their column names
//   - matrices ([Matrix]) are addressed positionally
//   - nested slices or arrays ([][]any, [][]string, [][3]any, ...) are
//     addressed positionally
//
// Positional stages are named by their column index, so the first stage of
// an unlabeled table is called "1".
//
// # Readers
//
// [Read] and [ReadFile] decode CSV (with a header row), JSON, YAML and TOML
// documents before normalizing them.
package table
