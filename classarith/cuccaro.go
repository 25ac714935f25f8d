// Package classarith реализует классическую арифметику на квантовых
// схемах: сумматор Куккаро с бегущим переносом на одной занятой анцилле.
package classarith

import (
	"errors"
	"fmt"

	"github.com/fillay12321/qlang/lang"
)

// ErrBadWidth ошибка, возникающая при построении сумматора нулевой ширины
var ErrBadWidth = errors.New("ширина регистра сумматора должна быть положительной")

// ADD зарегистрированный сумматор Куккаро: арность 2n+1
// (регистры a и b по n проводов и провод переноса)
var ADD = lang.MustRegister(lang.NewAbstractGate("CUCCARO_ADD",
	func(n int) int { return 2*n + 1 }, CuccaroAdd))

// maj строит рутину MAJ (majority): на проводах (c, b, a)
// вычисляет перенос в провод a
func maj() (*lang.Routine, error) {
	rout := lang.New("MAJ")
	ws := rout.NewWires(3)
	c, b, a := ws[0], ws[1], ws[2]

	if err := rout.Apply(lang.CNOT, a, b); err != nil {
		return nil, err
	}
	if err := rout.Apply(lang.CNOT, a, c); err != nil {
		return nil, err
	}
	if err := rout.Apply(lang.CCNOT, c, b, a); err != nil {
		return nil, err
	}

	return rout, nil
}

// uma строит рутину UMA (unmajority and add): обращает MAJ и
// записывает бит суммы в провод b
func uma() (*lang.Routine, error) {
	rout := lang.New("UMA")
	ws := rout.NewWires(3)
	c, b, a := ws[0], ws[1], ws[2]

	if err := rout.Apply(lang.CCNOT, c, b, a); err != nil {
		return nil, err
	}
	if err := rout.Apply(lang.CNOT, a, c); err != nil {
		return nil, err
	}
	if err := rout.Apply(lang.CNOT, c, b); err != nil {
		return nil, err
	}

	return rout, nil
}

// CuccaroAdd строит сумматор с бегущим переносом: b <- a + b.
// Провода: a[0..n) (младший бит первым), b[0..n), z (перенос).
// Внутренний провод входного переноса занимается как анцилла
// и восстанавливается в |0⟩ лестницей UMA.
func CuccaroAdd(n int) (*lang.Routine, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n = %d", ErrBadWidth, n)
	}

	rout := lang.New(fmt.Sprintf("CUCCARO_ADD(%d)", n))
	a := rout.NewWires(n)
	b := rout.NewWires(n)
	z := rout.NewWires(1)[0]

	carry := rout.NewWires(1)[0]
	if err := rout.SetAncillae(carry); err != nil {
		return nil, err
	}

	majRout, err := maj()
	if err != nil {
		return nil, err
	}
	umaRout, err := uma()
	if err != nil {
		return nil, err
	}

	// Лестница MAJ: перенос бежит вверх по регистру a
	if err := rout.Apply(majRout, carry, b[0], a[0]); err != nil {
		return nil, err
	}
	for i := 1; i < n; i++ {
		if err := rout.Apply(majRout, a[i-1], b[i], a[i]); err != nil {
			return nil, err
		}
	}

	// Копируем старший перенос в провод z
	if err := rout.Apply(lang.CNOT, a[n-1], z); err != nil {
		return nil, err
	}

	// Лестница UMA: восстанавливаем a и записываем биты суммы в b
	for i := n - 1; i >= 1; i-- {
		if err := rout.Apply(umaRout, a[i-1], b[i], a[i]); err != nil {
			return nil, err
		}
	}
	if err := rout.Apply(umaRout, carry, b[0], a[0]); err != nil {
		return nil, err
	}

	return rout, nil
}
