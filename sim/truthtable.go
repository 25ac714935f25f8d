package sim

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/fillay12321/qlang/lang"
)

var (
	// ErrAncillaNotRestored ошибка, возникающая когда анцилла не вернулась в |0⟩
	ErrAncillaNotRestored = errors.New("анцилла не восстановлена в состояние |0⟩")

	// ErrArityDiffers ошибка, возникающая при сравнении операций разной арности
	ErrArityDiffers = errors.New("операции имеют разную арность")

	// ErrTableTooWide ошибка, возникающая при построении таблицы истинности слишком широкой схемы
	ErrTableTooWide = errors.New("таблица истинности слишком велика")
)

// maxTableArity ограничивает перебор базисных входов: 2^20 строк
const maxTableArity = 20

// TruthTable вычисляет таблицу истинности развернутой схемы:
// для каждого базисного входа из [0, 2^Arity) возвращается базисный выход
// на формальных кубитах. Если на каком-либо входе схема оставляет
// суперпозицию или грязную анциллу, возвращается ошибка.
//
// Входы перебираются параллельно: каждый воркер владеет собственным
// симулятором.
func TruthTable(prog *lang.Program) ([]uint64, error) {
	if prog.Arity > maxTableArity {
		return nil, fmt.Errorf("%w: арность %d, максимум %d", ErrTableTooWide, prog.Arity, maxTableArity)
	}

	rows := uint64(1) << prog.Arity
	table := make([]uint64, rows)

	workers := runtime.GOMAXPROCS(0)
	if w := int(rows); w < workers {
		workers = w
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			s, err := New(max(prog.Width, 1))
			if err != nil {
				return err
			}
			for input := uint64(w); input < rows; input += uint64(workers) {
				out, err := runBasis(s, prog, input)
				if err != nil {
					return fmt.Errorf("вход %d: %w", input, err)
				}
				table[input] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return table, nil
}

// runBasis исполняет схему на базисном входе и возвращает выход на
// формальных кубитах, проверяя чистоту анцилл
func runBasis(s *Simulator, prog *lang.Program, input uint64) (uint64, error) {
	if err := s.RunProgram(prog, input); err != nil {
		return 0, err
	}

	outcome, err := s.BasisOutcome(0)
	if err != nil {
		return 0, err
	}

	formalMask := (uint64(1) << prog.Arity) - 1
	if outcome&^formalMask != 0 {
		return 0, fmt.Errorf("%w: выход %b", ErrAncillaNotRestored, outcome)
	}

	return outcome & formalMask, nil
}

// Equivalent проверяет табличную эквивалентность двух операций:
// обе должны иметь одинаковую арность и переводить каждый базисный вход
// в одинаковый базисный выход, возвращая все анциллы в |0⟩
func Equivalent(a, b lang.Op) (bool, error) {
	if a.Arity() != b.Arity() {
		return false, fmt.Errorf("%w: %d и %d", ErrArityDiffers, a.Arity(), b.Arity())
	}

	pa, err := lang.Flatten(a)
	if err != nil {
		return false, err
	}
	pb, err := lang.Flatten(b)
	if err != nil {
		return false, err
	}

	ta, err := TruthTable(pa)
	if err != nil {
		return false, err
	}
	tb, err := TruthTable(pb)
	if err != nil {
		return false, err
	}

	for i := range ta {
		if ta[i] != tb[i] {
			return false, nil
		}
	}

	return true, nil
}
