// Package corpus loads a YAML-declared set of hand-assembled chunk
// scenarios, used by the end-to-end property test: for every
// well-formed chunk in a corpus, decode, lift and print succeed, and
// the printed text contains every string constant.
package corpus

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mna/lua40dec/lang/chunk"
)

// Instruction is one hand-assembled instruction: a mnemonic (matching
// chunk.Opcode.String) plus whichever operand fields it consumes.
type Instruction struct {
	Op string `yaml:"op"`
	U  uint32 `yaml:"u,omitempty"`
	S  int32  `yaml:"s,omitempty"`
	A  uint32 `yaml:"a,omitempty"`
	B  uint32 `yaml:"b,omitempty"`
}

// Scenario is one prototype's worth of fixture data plus the source
// text the pipeline is expected to recover from it. Protos nests child
// scenarios, addressed by Closure's A operand in declaration order, for
// corpus entries that exercise recursive prototype decoding.
type Scenario struct {
	Name         string        `yaml:"name"`
	NumParams    int           `yaml:"num_params"`
	IsVararg     bool          `yaml:"is_vararg"`
	MaxStack     int           `yaml:"max_stack"`
	Strings      []string      `yaml:"strings"`
	Numbers      []float64     `yaml:"numbers"`
	Instructions []Instruction `yaml:"instructions"`
	Protos       []Scenario    `yaml:"protos,omitempty"`
	WantSource   string        `yaml:"want_source"`
}

// Load parses a corpus.yaml document into its scenario list.
func Load(r io.Reader) ([]Scenario, error) {
	var scenarios []Scenario
	if err := yaml.NewDecoder(r).Decode(&scenarios); err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return scenarios, nil
}

// Build assembles sc into a chunk.Proto with its Code/Ops pre-encoded
// under chunk.DefaultHeader, ready for chunk.Encode or direct use by
// lift.Lift.
func (sc Scenario) Build() (*chunk.Proto, error) {
	h := chunk.DefaultHeader()
	ops := make([]chunk.Op, len(sc.Instructions))
	code := make([]uint32, len(sc.Instructions))
	lines := make([]int, len(sc.Instructions))
	for i, ins := range sc.Instructions {
		kind, ok := chunk.ParseOpcode(ins.Op)
		if !ok {
			return nil, fmt.Errorf("corpus %q: unknown opcode %q", sc.Name, ins.Op)
		}
		op := chunk.Op{Kind: kind, U: ins.U, S: ins.S, A: ins.A, B: ins.B}
		ops[i] = op
		code[i] = chunk.EncodeInstruction(op, h)
		lines[i] = i + 1
	}
	protos := make([]*chunk.Proto, len(sc.Protos))
	for i, child := range sc.Protos {
		p, err := child.Build()
		if err != nil {
			return nil, err
		}
		protos[i] = p
	}
	return &chunk.Proto{
		Source:    sc.Name,
		NumParams: sc.NumParams,
		IsVararg:  sc.IsVararg,
		MaxStack:  sc.MaxStack,
		Constants: chunk.Constants{Strings: sc.Strings, Numbers: sc.Numbers, Protos: protos},
		Code:      code,
		Ops:       ops,
		Lines:     lines,
	}, nil
}
