//go:build property
// +build property

package toffoli_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fillay12321/qlang/lang"
	"github.com/fillay12321/qlang/sim"
	"github.com/fillay12321/qlang/toffoli"
)

// Свойство: декомпозиция таблично эквивалентна прямой реализации
// для любого количества проводов
func TestDACEquivalenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("декомпозиция эквивалентна прямому Тоффоли", prop.ForAll(
		func(n int) bool {
			standard, err := toffoli.Standard(n)
			if err != nil {
				return false
			}
			dac, err := toffoli.DAC(n)
			if err != nil {
				return false
			}

			ok, err := sim.Equivalent(standard, dac)
			return err == nil && ok
		},
		gen.IntRange(3, 9),
	))

	properties.TestingRun(t)
}

// Свойство: декомпозиция инвертирует целевой провод в точности на входах,
// где установлены все управляющие биты, и возвращает анциллы в |0⟩
func TestDACSemanticsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("целевой бит следует конъюнкции управлений", prop.ForAll(
		func(n int, seed uint64) bool {
			dac, err := toffoli.DAC(n)
			if err != nil {
				return false
			}
			prog, err := lang.Flatten(dac)
			if err != nil {
				return false
			}

			s, err := sim.New(prog.Width)
			if err != nil {
				return false
			}

			input := seed % (uint64(1) << n)
			if err := s.RunProgram(prog, input); err != nil {
				return false
			}
			outcome, err := s.BasisOutcome(0)
			if err != nil {
				return false
			}

			// Все кубиты выше формальных обязаны вернуться в |0⟩
			if outcome>>n != 0 {
				return false
			}

			return outcome == mcx(n, input)
		},
		gen.IntRange(3, 9),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
