// Package toffoli реализует два способа построения многоуправляемого
// вентиля X (обобщенного вентиля Тоффоли) на n проводах: прямое применение
// X с n-1 управлениями и рекурсивную декомпозицию «разделяй и властвуй»
// с занятыми анциллами.
package toffoli

import (
	"errors"
	"fmt"

	"github.com/fillay12321/qlang/lang"
)

// ErrTooFewWires ошибка, возникающая при построении Тоффоли менее чем на 3 проводах
var ErrTooFewWires = errors.New("вентиль Тоффоли требует не менее 3 проводов")

// Standard и DAC зарегистрированы в глобальном реестре как
// параметризованные вентили арности n
var (
	// TOFF прямая реализация: один вентиль X с n-1 управлениями
	TOFF = lang.MustRegister(lang.NewAbstractGate("TOFF",
		func(n int) int { return n }, Standard))

	// TOFFDAC реализация «разделяй и властвуй» на занятых анциллах
	TOFFDAC = lang.MustRegister(lang.NewAbstractGate("TOFF.DAC",
		func(n int) int { return n }, DAC))
)

// Standard строит рутину на n проводах, применяющую X с n-1 управлениями.
// Синтез многоуправляемого вентиля целиком возлагается на исполнителя схемы.
func Standard(n int) (*lang.Routine, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: n = %d", ErrTooFewWires, n)
	}

	rout := lang.New(fmt.Sprintf("TOFF(%d)", n))
	wires := rout.NewWires(n)

	if err := rout.Apply(lang.X.Ctrl(n-1), wires...); err != nil {
		return nil, err
	}

	return rout, nil
}

// DAC строит рутину Тоффоли на n проводах рекурсивной декомпозицией:
// при n == 3 применяется дважды управляемый X напрямую; иначе n-1
// управлений делятся пополам, конъюнкция каждой половины вычисляется
// в занятую анциллу внутри compute-блока, затем дважды управляемый X
// переносит результат в целевой провод, и анциллы освобождаются
// обратным вычислением (uncompute).
func DAC(n int) (*lang.Routine, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: n = %d", ErrTooFewWires, n)
	}

	rout := lang.New(fmt.Sprintf("TOFF.DAC(%d)", n))
	controls := rout.NewWires(n - 1)
	target := rout.NewWires(1)[0]

	if n == 3 {
		if err := rout.Apply(lang.X.Ctrl(2), controls[0], controls[1], target); err != nil {
			return nil, err
		}
		return rout, nil
	}

	firstHalf := (n-1)/2 + (n-1)%2
	secondHalf := (n - 1) / 2

	var firstAnc, secondAnc lang.Wire
	err := rout.Compute(func() error {
		firstToffoli, err := DAC(firstHalf + 1)
		if err != nil {
			return err
		}
		firstAnc = rout.NewWires(1)[0]
		if err := rout.Apply(firstToffoli, withTarget(controls[:firstHalf], firstAnc)...); err != nil {
			return err
		}
		if err := rout.SetAncillae(firstAnc); err != nil {
			return err
		}

		if secondHalf > 1 {
			secondToffoli, err := DAC(secondHalf + 1)
			if err != nil {
				return err
			}
			secondAnc = rout.NewWires(1)[0]
			if err := rout.Apply(secondToffoli, withTarget(controls[firstHalf:], secondAnc)...); err != nil {
				return err
			}
			if err := rout.SetAncillae(secondAnc); err != nil {
				return err
			}
		} else {
			// Единственное управление второй половины используется напрямую
			secondAnc = controls[len(controls)-1]
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := rout.Apply(lang.X.Ctrl(2), firstAnc, secondAnc, target); err != nil {
		return nil, err
	}

	return rout, rout.Uncompute()
}

// withTarget дописывает целевой провод к списку управляющих
func withTarget(controls []lang.Wire, target lang.Wire) []lang.Wire {
	ws := make([]lang.Wire, 0, len(controls)+1)
	ws = append(ws, controls...)
	return append(ws, target)
}
