package lang

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	// ErrBadBinding ошибка, возникающая при несоответствии привязки проводов арности рутины
	ErrBadBinding = errors.New("привязка проводов не соответствует арности рутины")

	// ErrPoolCorrupted ошибка, возникающая при освобождении незанятого кубита пула
	ErrPoolCorrupted = errors.New("пул анцилл поврежден: освобождение незанятого кубита")
)

// BoundGate представляет вентиль, привязанный к физическим кубитам.
// Сначала перечисляются управляющие кубиты, последним — целевой.
type BoundGate struct {
	Gate   Gate
	Qubits []int
}

// ControlQubits возвращает управляющие кубиты вентиля
func (bg BoundGate) ControlQubits() []int {
	return bg.Qubits[:len(bg.Qubits)-1]
}

// TargetQubit возвращает целевой кубит вентиля
func (bg BoundGate) TargetQubit() int {
	return bg.Qubits[len(bg.Qubits)-1]
}

// Program представляет развернутую схему: линейную последовательность
// вентилей над физическими кубитами. Формальные провода корневой
// операции занимают кубиты 0..Arity-1, анциллы — кубиты начиная с Arity.
type Program struct {
	Name  string
	Arity int

	// Width общее количество кубитов, включая анциллы
	Width int

	// MaxAncillae максимальное количество одновременно занятых анцилл
	MaxAncillae int

	Gates []BoundGate
}

// GateCount возвращает количество вентилей в развернутой схеме
func (p *Program) GateCount() int {
	return len(p.Gates)
}

// ancillaPool выдает кубиты под занятые анциллы и переиспользует их:
// анцилла, возвращенная рутиной в |0⟩, может быть выдана повторно
type ancillaPool struct {
	next  int
	free  []int
	inUse mapset.Set[int]
	high  int
}

func newAncillaPool(first int) *ancillaPool {
	return &ancillaPool{
		next:  first,
		inUse: mapset.NewSet[int](),
	}
}

// acquire выдает свободный кубит пула, при необходимости расширяя пул
func (p *ancillaPool) acquire() int {
	var q int
	if n := len(p.free); n > 0 {
		q = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		q = p.next
		p.next++
	}

	p.inUse.Add(q)
	if c := p.inUse.Cardinality(); c > p.high {
		p.high = c
	}

	return q
}

// release возвращает кубит в пул для переиспользования
func (p *ancillaPool) release(q int) error {
	if !p.inUse.Contains(q) {
		return fmt.Errorf("%w: кубит %d", ErrPoolCorrupted, q)
	}
	p.inUse.Remove(q)
	p.free = append(p.free, q)
	return nil
}

// Flatten разворачивает операцию в линейную последовательность вентилей
// над физическими кубитами. Вложенные рутины раскрываются рекурсивно,
// их анциллы получают кубиты из переиспользуемого пула.
func Flatten(op Op) (*Program, error) {
	if op == nil {
		return nil, ErrNilOp
	}

	arity := op.Arity()
	binding := make([]int, arity)
	for i := range binding {
		binding[i] = i
	}

	prog := &Program{
		Name:  op.Name(),
		Arity: arity,
	}
	pool := newAncillaPool(arity)

	switch v := op.(type) {
	case Gate:
		prog.Gates = append(prog.Gates, BoundGate{Gate: v, Qubits: binding})
	case *Routine:
		if err := flattenInto(v, binding, pool, &prog.Gates); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}

	prog.Width = pool.next
	prog.MaxAncillae = pool.high

	return prog, nil
}

// flattenInto разворачивает рутину при заданной привязке формальных
// проводов к физическим кубитам
func flattenInto(r *Routine, binding []int, pool *ancillaPool, out *[]BoundGate) error {
	if len(binding) != r.Arity() {
		return fmt.Errorf("%w: рутина %s, арность %d, привязка %d",
			ErrBadBinding, r.name, r.Arity(), len(binding))
	}

	// Таблица соответствия проводов рутины физическим кубитам:
	// формальные провода связываются в порядке выделения,
	// анциллы занимают кубиты из пула
	table := make([]int, r.wires)
	var owned []int
	fi := 0
	for i := 0; i < r.wires; i++ {
		if r.ancillae.Contains(i) {
			q := pool.acquire()
			table[i] = q
			owned = append(owned, q)
			continue
		}
		table[i] = binding[fi]
		fi++
	}

	for _, ins := range r.instrs {
		mapped := make([]int, len(ins.wires))
		for i, w := range ins.wires {
			mapped[i] = table[w]
		}

		switch v := ins.op.(type) {
		case Gate:
			*out = append(*out, BoundGate{Gate: v, Qubits: mapped})
		case *Routine:
			if err := flattenInto(v, mapped, pool, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedOp, ins.op)
		}
	}

	// К завершению рутины ее анциллы восстановлены в |0⟩
	// и возвращаются в пул для переиспользования
	for i := len(owned) - 1; i >= 0; i-- {
		if err := pool.release(owned[i]); err != nil {
			return err
		}
	}

	return nil
}
