package lang

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	// ErrNilOp ошибка, возникающая при применении nil-операции
	ErrNilOp = errors.New("операция не задана")

	// ErrArityMismatch ошибка, возникающая при несоответствии количества проводов арности операции
	ErrArityMismatch = errors.New("количество проводов не соответствует арности операции")

	// ErrForeignWire ошибка, возникающая при использовании провода чужой рутины
	ErrForeignWire = errors.New("провод принадлежит другой рутине")

	// ErrDuplicateWire ошибка, возникающая при повторном использовании провода в одной операции
	ErrDuplicateWire = errors.New("провод использован в операции более одного раза")

	// ErrSelfApply ошибка, возникающая при применении рутины к самой себе
	ErrSelfApply = errors.New("рутина не может быть применена к самой себе")

	// ErrNestedCompute ошибка, возникающая при вложенных compute-блоках
	ErrNestedCompute = errors.New("compute-блоки не могут быть вложенными")

	// ErrNoComputeBlock ошибка, возникающая при вызове Uncompute без compute-блока
	ErrNoComputeBlock = errors.New("отсутствует compute-блок для обращения")

	// ErrUnsupportedOp ошибка, возникающая при операции неизвестного типа
	ErrUnsupportedOp = errors.New("неподдерживаемый тип операции")
)

// Op представляет операцию, применимую к проводам рутины.
// Реализуется типами Gate и *Routine.
type Op interface {
	// Name возвращает имя операции
	Name() string

	// Arity возвращает количество проводов, к которым применяется операция
	Arity() int
}

// Wire представляет провод (логический кубит), выделенный рутиной
type Wire struct {
	owner *Routine
	index int
}

// Index возвращает порядковый номер провода внутри рутины
func (w Wire) Index() int {
	return w.index
}

// instruction представляет одно применение операции к проводам рутины
type instruction struct {
	op    Op
	wires []int
}

// Routine представляет именованный переиспользуемый фрагмент квантовой схемы.
// Рутина выделяет провода, применяет к ним вентили и вложенные рутины
// и поддерживает scoped compute/uncompute для работы с занятыми анциллами.
type Routine struct {
	name string

	// Количество выделенных проводов
	wires int

	// Индексы проводов, объявленных анциллами
	ancillae mapset.Set[int]

	// Последовательность применений операций
	instrs []instruction

	// Границы текущего compute-блока: from == -1, когда блока нет
	inCompute bool
	blockFrom int
	blockTo   int
}

// New создает пустую рутину с указанным именем
func New(name string) *Routine {
	return &Routine{
		name:      name,
		ancillae:  mapset.NewSet[int](),
		blockFrom: -1,
		blockTo:   -1,
	}
}

// Name возвращает имя рутины
func (r *Routine) Name() string {
	return r.name
}

// Arity возвращает количество формальных проводов рутины:
// выделенные провода за вычетом объявленных анцилл
func (r *Routine) Arity() int {
	return r.wires - r.ancillae.Cardinality()
}

// WireCount возвращает общее количество выделенных проводов, включая анциллы
func (r *Routine) WireCount() int {
	return r.wires
}

// AncillaCount возвращает количество объявленных анцилл
func (r *Routine) AncillaCount() int {
	return r.ancillae.Cardinality()
}

// InstructionCount возвращает количество записанных применений операций
func (r *Routine) InstructionCount() int {
	return len(r.instrs)
}

// NewWires выделяет n новых проводов рутины.
// При n <= 0 возвращается nil.
func (r *Routine) NewWires(n int) []Wire {
	if n <= 0 {
		return nil
	}

	ws := make([]Wire, n)
	for i := range ws {
		ws[i] = Wire{owner: r, index: r.wires + i}
	}
	r.wires += n

	return ws
}

// Apply применяет операцию к указанным проводам рутины.
// Для управляемых вентилей сначала перечисляются управляющие провода,
// затем целевой.
func (r *Routine) Apply(op Op, ws ...Wire) error {
	if op == nil {
		return ErrNilOp
	}

	switch v := op.(type) {
	case Gate:
		// Базовые вентили применимы всегда
	case *Routine:
		if v == r {
			return ErrSelfApply
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}

	if len(ws) != op.Arity() {
		return fmt.Errorf("%w: операция %s требует %d проводов, передано %d",
			ErrArityMismatch, op.Name(), op.Arity(), len(ws))
	}

	seen := mapset.NewSet[int]()
	idx := make([]int, len(ws))
	for i, w := range ws {
		if w.owner != r {
			return fmt.Errorf("%w: провод %d", ErrForeignWire, w.index)
		}
		if !seen.Add(w.index) {
			return fmt.Errorf("%w: провод %d", ErrDuplicateWire, w.index)
		}
		idx[i] = w.index
	}

	r.instrs = append(r.instrs, instruction{op: op, wires: idx})

	return nil
}

// SetAncillae объявляет провода анциллами: занятыми кубитами, которые
// рутина обязана вернуть в исходное состояние |0⟩ до своего завершения.
// Анциллы не входят в формальную арность рутины.
func (r *Routine) SetAncillae(ws ...Wire) error {
	for _, w := range ws {
		if w.owner != r {
			return fmt.Errorf("%w: провод %d", ErrForeignWire, w.index)
		}
		r.ancillae.Add(w.index)
	}
	return nil
}

// Compute выполняет build внутри compute-блока: все применения операций,
// записанные до возврата из build, будут обращены последующим вызовом
// Uncompute. Вложенные compute-блоки запрещены.
func (r *Routine) Compute(build func() error) error {
	if r.inCompute {
		return ErrNestedCompute
	}

	r.inCompute = true
	r.blockFrom = len(r.instrs)

	err := build()

	r.blockTo = len(r.instrs)
	r.inCompute = false

	if err != nil {
		r.blockFrom, r.blockTo = -1, -1
		return err
	}

	return nil
}

// Uncompute дописывает в рутину обращение последнего compute-блока:
// его операции в обратном порядке, каждая эрмитово сопряжена.
// Операции, примененные между концом блока и вызовом Uncompute,
// не затрагиваются.
func (r *Routine) Uncompute() error {
	if r.blockFrom < 0 {
		return ErrNoComputeBlock
	}

	block := r.instrs[r.blockFrom:r.blockTo]
	for i := len(block) - 1; i >= 0; i-- {
		inv, err := daggerOp(block[i].op)
		if err != nil {
			return err
		}
		r.instrs = append(r.instrs, instruction{
			op:    inv,
			wires: append([]int(nil), block[i].wires...),
		})
	}

	r.blockFrom, r.blockTo = -1, -1

	return nil
}

// Dagger возвращает новую рутину, реализующую обращение данной:
// операции в обратном порядке, каждая эрмитово сопряжена
func (r *Routine) Dagger() (*Routine, error) {
	inv := New(r.name + "†")
	inv.wires = r.wires
	inv.ancillae = r.ancillae.Clone()

	for i := len(r.instrs) - 1; i >= 0; i-- {
		op, err := daggerOp(r.instrs[i].op)
		if err != nil {
			return nil, err
		}
		inv.instrs = append(inv.instrs, instruction{
			op:    op,
			wires: append([]int(nil), r.instrs[i].wires...),
		})
	}

	return inv, nil
}

// daggerOp возвращает эрмитово-сопряженную операцию
func daggerOp(op Op) (Op, error) {
	switch v := op.(type) {
	case Gate:
		return v.Dagger(), nil
	case *Routine:
		return v.Dagger()
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}
