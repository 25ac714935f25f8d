package lang_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillay12321/qlang/lang"
)

func TestRoutineWires(t *testing.T) {
	r := lang.New("TEST")
	assert.Equal(t, 0, r.WireCount())
	assert.Nil(t, r.NewWires(0))
	assert.Nil(t, r.NewWires(-1))

	ws := r.NewWires(3)
	require.Len(t, ws, 3)
	assert.Equal(t, 0, ws[0].Index())
	assert.Equal(t, 2, ws[2].Index())
	assert.Equal(t, 3, r.WireCount())
	assert.Equal(t, 3, r.Arity())

	// Анциллы не входят в формальную арность
	anc := r.NewWires(1)[0]
	require.NoError(t, r.SetAncillae(anc))
	assert.Equal(t, 4, r.WireCount())
	assert.Equal(t, 3, r.Arity())
	assert.Equal(t, 1, r.AncillaCount())

	// Повторное объявление той же анциллы безвредно
	require.NoError(t, r.SetAncillae(anc))
	assert.Equal(t, 1, r.AncillaCount())
}

func TestRoutineApplyValidation(t *testing.T) {
	r := lang.New("A")
	other := lang.New("B")
	ws := r.NewWires(2)
	foreign := other.NewWires(1)[0]

	// Нулевая операция
	assert.ErrorIs(t, r.Apply(nil, ws[0]), lang.ErrNilOp)

	// Несоответствие арности
	assert.ErrorIs(t, r.Apply(lang.CNOT, ws[0]), lang.ErrArityMismatch)
	assert.ErrorIs(t, r.Apply(lang.H, ws[0], ws[1]), lang.ErrArityMismatch)

	// Провод чужой рутины
	assert.ErrorIs(t, r.Apply(lang.CNOT, ws[0], foreign), lang.ErrForeignWire)

	// Провод дважды в одной операции
	assert.ErrorIs(t, r.Apply(lang.CNOT, ws[0], ws[0]), lang.ErrDuplicateWire)

	// Рутина к самой себе
	assert.ErrorIs(t, r.Apply(r, ws...), lang.ErrSelfApply)

	// Некорректные применения не записываются
	assert.Equal(t, 0, r.InstructionCount())

	require.NoError(t, r.Apply(lang.CNOT, ws[0], ws[1]))
	assert.Equal(t, 1, r.InstructionCount())
}

// Анциллой может быть объявлен только собственный провод
func TestRoutineAncillaValidation(t *testing.T) {
	r := lang.New("A")
	other := lang.New("B")
	foreign := other.NewWires(1)[0]

	assert.ErrorIs(t, r.SetAncillae(foreign), lang.ErrForeignWire)
}

func TestRoutineComputeUncompute(t *testing.T) {
	r := lang.New("CU")
	ws := r.NewWires(2)

	err := r.Compute(func() error {
		if err := r.Apply(lang.H, ws[0]); err != nil {
			return err
		}
		return r.Apply(lang.S, ws[1])
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.InstructionCount())

	// Операция между блоком и Uncompute не обращается
	require.NoError(t, r.Apply(lang.CNOT, ws[0], ws[1]))

	require.NoError(t, r.Uncompute())
	assert.Equal(t, 5, r.InstructionCount())

	// Блок обращается в обратном порядке с сопряжением
	prog, err := lang.Flatten(r)
	require.NoError(t, err)
	require.Equal(t, 5, prog.GateCount())
	assert.Equal(t, "H", prog.Gates[0].Gate.Name())
	assert.Equal(t, "S", prog.Gates[1].Gate.Name())
	assert.Equal(t, "C-X", prog.Gates[2].Gate.Name())
	assert.Equal(t, "S†", prog.Gates[3].Gate.Name())
	assert.Equal(t, "H", prog.Gates[4].Gate.Name())

	// Повторный Uncompute без нового блока запрещен
	assert.ErrorIs(t, r.Uncompute(), lang.ErrNoComputeBlock)
}

func TestRoutineNestedCompute(t *testing.T) {
	r := lang.New("NEST")
	r.NewWires(1)

	err := r.Compute(func() error {
		return r.Compute(func() error { return nil })
	})
	assert.ErrorIs(t, err, lang.ErrNestedCompute)
}

// Ошибка внутри build отбрасывает блок
func TestRoutineComputeError(t *testing.T) {
	r := lang.New("ERR")
	ws := r.NewWires(1)
	boom := errors.New("boom")

	err := r.Compute(func() error {
		if err := r.Apply(lang.H, ws[0]); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Uncompute(), lang.ErrNoComputeBlock)
}

func TestRoutineDagger(t *testing.T) {
	r := lang.New("FWD")
	ws := r.NewWires(2)
	require.NoError(t, r.Apply(lang.H, ws[0]))
	require.NoError(t, r.Apply(lang.T, ws[1]))

	inv, err := r.Dagger()
	require.NoError(t, err)
	assert.Equal(t, "FWD†", inv.Name())
	assert.Equal(t, r.Arity(), inv.Arity())

	prog, err := lang.Flatten(inv)
	require.NoError(t, err)
	require.Equal(t, 2, prog.GateCount())
	assert.Equal(t, "T†", prog.Gates[0].Gate.Name())
	assert.Equal(t, "H", prog.Gates[1].Gate.Name())
}
