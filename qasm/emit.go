// Package qasm реализует внешние представления развернутых схем:
// экспорт в OpenQASM 2.0 и YAML-описания схем.
package qasm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fillay12321/qlang/lang"
)

// ErrUnsupportedGate ошибка, возникающая при экспорте вентиля,
// не выразимого примитивами qelib1
var ErrUnsupportedGate = errors.New("вентиль не выразим примитивами OpenQASM 2.0")

// Emit генерирует текст OpenQASM 2.0 для развернутой схемы.
// Поддерживаются вентили максимум с двумя управлениями (ccx);
// вентили с большим числом управлений должны быть предварительно
// декомпозированы (например, конструкцией TOFF.DAC).
func Emit(p *lang.Program) (string, error) {
	var sb strings.Builder

	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "// %s: арность %d, анцилл %d\n", p.Name, p.Arity, p.Width-p.Arity)
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", p.Width)

	for _, bg := range p.Gates {
		line, err := gateLine(bg)
		if err != nil {
			return "", err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// gateLine переводит один привязанный вентиль в строку OpenQASM
func gateLine(bg lang.BoundGate) (string, error) {
	g := bg.Gate
	target := bg.TargetQubit()
	controls := bg.ControlQubits()

	name, err := qasmName(g)
	if err != nil {
		return "", err
	}

	args := make([]string, 0, len(bg.Qubits))
	for _, c := range controls {
		args = append(args, fmt.Sprintf("q[%d]", c))
	}
	args = append(args, fmt.Sprintf("q[%d]", target))

	return fmt.Sprintf("%s %s;", name, strings.Join(args, ",")), nil
}

// qasmName подбирает имя qelib1 для вентиля с учетом управлений,
// сопряжения и параметров
func qasmName(g lang.Gate) (string, error) {
	base := g.BaseName()
	theta := g.Theta()
	if g.IsDagger() {
		// Для параметрических вентилей сопряжение — смена знака угла
		theta = -theta
	}

	switch g.Controls() {
	case 0:
		switch base {
		case "X", "Y", "Z", "H":
			// Самообратные вентили: сопряжение не меняет имени
			return strings.ToLower(base), nil
		case "S":
			if g.IsDagger() {
				return "sdg", nil
			}
			return "s", nil
		case "T":
			if g.IsDagger() {
				return "tdg", nil
			}
			return "t", nil
		case "PH":
			return "u1(" + formatTheta(theta) + ")", nil
		case "RX":
			return "rx(" + formatTheta(theta) + ")", nil
		case "RY":
			return "ry(" + formatTheta(theta) + ")", nil
		case "RZ":
			return "rz(" + formatTheta(theta) + ")", nil
		}
	case 1:
		switch base {
		case "X":
			return "cx", nil
		case "Z":
			return "cz", nil
		case "PH":
			return "cu1(" + formatTheta(theta) + ")", nil
		case "RZ":
			return "crz(" + formatTheta(theta) + ")", nil
		}
	case 2:
		if base == "X" {
			return "ccx", nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Name())
}

// formatTheta форматирует угол вентиля для текста OpenQASM
func formatTheta(theta float64) string {
	return strconv.FormatFloat(theta, 'g', -1, 64)
}
