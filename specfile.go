package fxchain

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/fxchain-go/internal/spec"
)

// File is a chain file: an optional config block, an optional input WAV
// path and the chain sequence. A bare sequence is accepted as a file with
// only a chain.
//
//	config:
//	  channels: 4
//	  downmix: weighted
//	  fade: 80ms
//	input: loop.wav
//	chain:
//	  - source
//	  - [delay, {id: d1, time: 120}]
//	  - stereo
type File struct {
	Config Config    `yaml:"config"`
	Input  string    `yaml:"input,omitempty"`
	Chain  ChainSpec `yaml:"chain"`
}

// ParseFile decodes a chain file. Config fields left out keep their
// defaults.
func ParseFile(data []byte) (File, error) {
	f := File{Config: DefaultConfig()}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return f, spec.Malformed(-1, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case 0:
		return f, nil
	case yaml.SequenceNode:
		err := root.Decode(&f.Chain)
		return f, err
	case yaml.MappingNode:
		if err := root.Decode(&f); err != nil {
			var se *spec.Error
			if errors.As(err, &se) {
				return f, se
			}
			return f, spec.Malformed(-1, err)
		}
		return f, nil
	default:
		return f, spec.Malformed(-1, fmt.Errorf("chain file must be a mapping or a sequence"))
	}
}

// LoadFile reads and decodes a chain file.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := ParseFile(data)
	if err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Marshal encodes the file as YAML.
func (f File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
