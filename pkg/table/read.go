package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sankey/pkg/errors"
)

// Format identifies a serialized table encoding.
type Format string

// Supported input formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported input formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat maps a user-supplied name (case-insensitive, "yml" accepted)
// to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q (must be one of: csv, json, yaml, toml)", s)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer input format of %q without an extension", path)
	}
	return ParseFormat(ext)
}

// document is the structured shape shared by the JSON, YAML and TOML
// readers:
//
//	{"columns": ["count", "from", "to"], "rows": [[1, "a", "x"], ...]}
type document struct {
	Columns []string `json:"columns" yaml:"columns" toml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows" toml:"rows"`
}

// ReadFile reads and normalizes the table stored at path, inferring the
// format from the extension.
func ReadFile(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a table from r and normalizes it.
//
// CSV input must start with a header row. JSON, YAML and TOML input is an
// object with "columns" and "rows"; JSON and YAML additionally accept a
// bare list of rows, in which case stages are named by column index.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatJSON:
		return readJSON(r)
	case FormatYAML:
		return readYAML(r)
	case FormatTOML:
		return readTOML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", format)
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "csv has no header")
	}
	rows := make([][]any, len(records)-1)
	for i, rec := range records[1:] {
		cells := make([]any, len(rec))
		for j, c := range rec {
			cells[j] = c
		}
		rows[i] = cells
	}
	return Normalize(NewFrame(records[0], rows))
}

func readJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "read json")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "json document is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if len(data) > 0 && data[0] == '[' {
		var rows [][]any
		if err := dec.Decode(&rows); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode json")
		}
		return Normalize(rows)
	}

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode json")
	}
	return fromDocument(doc)
}

func readYAML(r io.Reader) (*Table, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeEmptyInput, "yaml document is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode yaml")
	}

	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.SequenceNode {
		var rows [][]any
		if err := root.Decode(&rows); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode yaml")
		}
		return Normalize(rows)
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode yaml")
	}
	return fromDocument(doc)
}

func readTOML(r io.Reader) (*Table, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "decode toml")
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*Table, error) {
	if len(doc.Columns) == 0 {
		return Normalize(doc.Rows)
	}
	return Normalize(NewFrame(doc.Columns, doc.Rows))
}
