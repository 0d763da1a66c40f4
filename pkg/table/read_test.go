package table

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/errors"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		stages []string
	}{
		{
			name:   "csv with header",
			format: FormatCSV,
			input:  "count,from,to\n1,a,x\n2,b,x\n1,a,y\n",
			stages: []string{"from", "to"},
		},
		{
			name:   "json document",
			format: FormatJSON,
			input:  `{"columns": ["count", "from", "to"], "rows": [[1, "a", "x"], [2, "b", "x"], [1, "a", "y"]]}`,
			stages: []string{"from", "to"},
		},
		{
			name:   "json rows",
			format: FormatJSON,
			input:  `[[1, "a", "x"], [2, "b", "x"], [1, "a", "y"]]`,
			stages: []string{"1", "2"},
		},
		{
			name:   "yaml document",
			format: FormatYAML,
			input:  "columns: [count, from, to]\nrows:\n  - [1, a, x]\n  - [2, b, x]\n  - [1, a, y]\n",
			stages: []string{"from", "to"},
		},
		{
			name:   "yaml rows",
			format: FormatYAML,
			input:  "- [1, a, x]\n- [2, b, x]\n- [1, a, y]\n",
			stages: []string{"1", "2"},
		},
		{
			name:   "toml document",
			format: FormatTOML,
			input:  "columns = [\"count\", \"from\", \"to\"]\nrows = [[1, \"a\", \"x\"], [2, \"b\", \"x\"], [1, \"a\", \"y\"]]\n",
			stages: []string{"from", "to"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(tbl.StageNames, tt.stages) {
				t.Errorf("StageNames = %v, want %v", tbl.StageNames, tt.stages)
			}
			if len(tbl.Rows) != 3 {
				t.Fatalf("Rows = %d, want 3", len(tbl.Rows))
			}
			if tbl.TotalWeight() != 4 {
				t.Errorf("TotalWeight() = %v, want 4", tbl.TotalWeight())
			}
			if got := tbl.Rows[2].Labels; !reflect.DeepEqual(got, []string{"a", "y"}) {
				t.Errorf("Rows[2].Labels = %v, want [a y]", got)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"csv header only", FormatCSV, "count,from,to\n", errors.ErrCodeEmptyInput},
		{"csv empty", FormatCSV, "", errors.ErrCodeEmptyInput},
		{"csv ragged", FormatCSV, "count,from,to\n1,a\n", errors.ErrCodeInvalidShape},
		{"csv bad weight", FormatCSV, "count,from,to\nx,a,b\n", errors.ErrCodeInvalidWeight},
		{"csv negative", FormatCSV, "count,from,to\n-2,a,b\n", errors.ErrCodeInvalidWeight},
		{"json malformed", FormatJSON, `{"columns": [`, errors.ErrCodeInvalidShape},
		{"json empty", FormatJSON, "", errors.ErrCodeEmptyInput},
		{"json blank", FormatJSON, " \n\t", errors.ErrCodeEmptyInput},
		{"json no rows", FormatJSON, `{"columns": ["n", "a"], "rows": []}`, errors.ErrCodeEmptyInput},
		{"yaml empty", FormatYAML, "", errors.ErrCodeEmptyInput},
		{"toml malformed", FormatTOML, "rows = [[", errors.ErrCodeInvalidShape},
		{"unknown format", Format("xls"), "", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"flows.csv", FormatCSV, false},
		{"flows.JSON", FormatJSON, false},
		{"flows.yml", FormatYAML, false},
		{"flows.yaml", FormatYAML, false},
		{"dir/flows.toml", FormatTOML, false},
		{"flows", "", true},
		{"flows.xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flows.csv")
	if err := os.WriteFile(path, []byte("n,a,b\n5,a,b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0].Weight != 5 {
		t.Errorf("ReadFile rows = %+v", tbl.Rows)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
