package qasm

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fillay12321/qlang/lang"
)

var (
	// ErrBadCircuitFile ошибка, возникающая при некорректном описании схемы
	ErrBadCircuitFile = errors.New("некорректное описание схемы")

	// ErrUnknownBaseGate ошибка, возникающая при неизвестном имени вентиля в описании
	ErrUnknownBaseGate = errors.New("неизвестное имя вентиля в описании схемы")
)

// GateSpec описывает одно применение вентиля в YAML-файле схемы
type GateSpec struct {
	Gate     string  `yaml:"gate"`
	Target   int     `yaml:"target"`
	Controls []int   `yaml:"controls,omitempty"`
	Theta    float64 `yaml:"theta,omitempty"`
	Dagger   bool    `yaml:"dagger,omitempty"`
}

// CircuitFile описывает схему целиком: количество кубитов и
// последовательность вентилей
type CircuitFile struct {
	Name   string     `yaml:"name"`
	Qubits int        `yaml:"qubits"`
	Gates  []GateSpec `yaml:"gates"`
}

// LoadYAML читает YAML-описание схемы и разворачивает его в Program.
// Все кубиты описания считаются формальными.
func LoadYAML(r io.Reader) (*lang.Program, error) {
	var cf CircuitFile
	if err := yaml.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCircuitFile, err)
	}

	if cf.Qubits < 1 || cf.Qubits > 64 {
		return nil, fmt.Errorf("%w: недопустимое количество кубитов %d", ErrBadCircuitFile, cf.Qubits)
	}

	prog := &lang.Program{
		Name:  cf.Name,
		Arity: cf.Qubits,
		Width: cf.Qubits,
	}

	for i, spec := range cf.Gates {
		g, err := buildGate(spec)
		if err != nil {
			return nil, fmt.Errorf("вентиль %d: %w", i, err)
		}

		qubits := make([]int, 0, len(spec.Controls)+1)
		seen := make(map[int]bool)
		for _, q := range append(append([]int(nil), spec.Controls...), spec.Target) {
			if q < 0 || q >= cf.Qubits {
				return nil, fmt.Errorf("%w: вентиль %d использует кубит %d вне диапазона",
					ErrBadCircuitFile, i, q)
			}
			if seen[q] {
				return nil, fmt.Errorf("%w: вентиль %d использует кубит %d дважды",
					ErrBadCircuitFile, i, q)
			}
			seen[q] = true
			qubits = append(qubits, q)
		}

		prog.Gates = append(prog.Gates, lang.BoundGate{Gate: g, Qubits: qubits})
	}

	return prog, nil
}

// SaveYAML записывает развернутую схему в YAML-описание
func SaveYAML(w io.Writer, p *lang.Program) error {
	cf := CircuitFile{
		Name:   p.Name,
		Qubits: p.Width,
	}

	for _, bg := range p.Gates {
		spec := GateSpec{
			Gate:   bg.Gate.BaseName(),
			Target: bg.TargetQubit(),
			Dagger: bg.Gate.IsDagger(),
		}
		if cs := bg.ControlQubits(); len(cs) > 0 {
			spec.Controls = append([]int(nil), cs...)
		}
		if params := bg.Gate.Params(); len(params) > 0 {
			spec.Theta = params[0]
		}
		cf.Gates = append(cf.Gates, spec)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	return enc.Encode(&cf)
}

// buildGate собирает lang.Gate из описания
func buildGate(spec GateSpec) (lang.Gate, error) {
	var g lang.Gate

	switch spec.Gate {
	case "X":
		g = lang.X
	case "Y":
		g = lang.Y
	case "Z":
		g = lang.Z
	case "H":
		g = lang.H
	case "S":
		g = lang.S
	case "T":
		g = lang.T
	case "PH":
		g = lang.PH(spec.Theta)
	case "RX":
		g = lang.RX(spec.Theta)
	case "RY":
		g = lang.RY(spec.Theta)
	case "RZ":
		g = lang.RZ(spec.Theta)
	default:
		return g, fmt.Errorf("%w: %q", ErrUnknownBaseGate, spec.Gate)
	}

	g = g.Ctrl(len(spec.Controls))
	if spec.Dagger {
		g = g.Dagger()
	}

	return g, nil
}
