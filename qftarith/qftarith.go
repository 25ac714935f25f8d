// Package qftarith реализует арифметику в базисе Фурье: квантовое
// преобразование Фурье и сумматор Дрейпера на фазовых вращениях.
package qftarith

import (
	"errors"
	"fmt"
	"math"

	"github.com/fillay12321/qlang/lang"
)

// ErrBadWidth ошибка, возникающая при построении преобразования нулевой ширины
var ErrBadWidth = errors.New("ширина регистра должна быть положительной")

// Зарегистрированные параметризованные вентили пакета
var (
	// QFTGATE квантовое преобразование Фурье на n проводах
	QFTGATE = lang.MustRegister(lang.NewAbstractGate("QFT",
		func(n int) int { return n }, QFT))

	// ADDGATE сумматор Дрейпера: арность 2n (регистры a и b)
	ADDGATE = lang.MustRegister(lang.NewAbstractGate("QFT_ADD",
		func(n int) int { return 2 * n }, Add))
)

// QFT строит квантовое преобразование Фурье на n проводах без
// завершающих перестановок: провод i (младший бит — провод 0)
// получает фазу 2π·x/2^(i+1)
func QFT(n int) (*lang.Routine, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n = %d", ErrBadWidth, n)
	}

	rout := lang.New(fmt.Sprintf("QFT(%d)", n))
	ws := rout.NewWires(n)

	for i := n - 1; i >= 0; i-- {
		if err := rout.Apply(lang.H, ws[i]); err != nil {
			return nil, err
		}
		for j := i - 1; j >= 0; j-- {
			theta := math.Pi / float64(uint64(1)<<uint(i-j))
			if err := rout.Apply(lang.PH(theta).Ctrl(1), ws[j], ws[i]); err != nil {
				return nil, err
			}
		}
	}

	return rout, nil
}

// Add строит сумматор Дрейпера: b <- (a + b) mod 2^n.
// Провода: a[0..n), b[0..n), младшие биты первыми. Регистр b переводится
// в базис Фурье, фазовые вращения по битам a прибавляют a, после чего
// обратное преобразование возвращает b в вычислительный базис.
func Add(n int) (*lang.Routine, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n = %d", ErrBadWidth, n)
	}

	rout := lang.New(fmt.Sprintf("QFT_ADD(%d)", n))
	a := rout.NewWires(n)
	b := rout.NewWires(n)

	qft, err := QFT(n)
	if err != nil {
		return nil, err
	}
	iqft, err := qft.Dagger()
	if err != nil {
		return nil, err
	}

	if err := rout.Apply(qft, b...); err != nil {
		return nil, err
	}

	// Фазовое прибавление: провод b[i] получает 2π·a/2^(i+1)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			theta := math.Pi / float64(uint64(1)<<uint(i-j))
			if err := rout.Apply(lang.PH(theta).Ctrl(1), a[j], b[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := rout.Apply(iqft, b...); err != nil {
		return nil, err
	}

	return rout, nil
}
