package param

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a table. Base names a preset whose values
// apply to every field the file leaves out.
type file struct {
	Base string `yaml:"base,omitempty"`
	Spec `yaml:",inline"`
}

// LoadSpec reads a spec from YAML. Unknown keys are rejected.
func LoadSpec(r io.Reader) (Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Spec{}, err
	}

	var header struct {
		Base string `yaml:"base"`
	}

	if err := yaml.Unmarshal(data, &header); err != nil {
		return Spec{}, fmt.Errorf("parsing dram param file: %w", err)
	}

	f := file{}

	if header.Base != "" {
		f.Spec, err = PresetSpec(header.Base)
		if err != nil {
			return Spec{}, err
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Spec{}, fmt.Errorf("parsing dram param file: %w", err)
	}

	return f.Spec, nil
}

// Load reads and validates a table from YAML.
func Load(r io.Reader) (*Table, error) {
	s, err := LoadSpec(r)
	if err != nil {
		return nil, err
	}

	return New(s)
}

// LoadFile reads and validates a table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// MarshalYAML writes every field of the table with datasheet units.
func (t *Table) MarshalYAML() (interface{}, error) {
	return file{Spec: t.s}, nil
}

// Dump writes the table as YAML.
func Dump(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(t); err != nil {
		return err
	}

	return enc.Close()
}
