package sim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillay12321/qlang/lang"
	"github.com/fillay12321/qlang/sim"
)

func TestNewValidation(t *testing.T) {
	for _, n := range []int{-1, 0, sim.MaxQubits + 1} {
		_, err := sim.New(n)
		assert.ErrorIs(t, err, sim.ErrInvalidQubitCount, "n=%d", n)
	}

	s, err := sim.New(2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumQubits())

	// Начальное состояние |00⟩
	amp, err := s.Amplitude(0)
	require.NoError(t, err)
	assert.Equal(t, complex128(1), amp)
}

func TestApplyX(t *testing.T) {
	s, err := sim.New(1)
	require.NoError(t, err)

	require.NoError(t, s.ApplyGate(lang.X, 0))
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), outcome)

	// Повторное применение возвращает |0⟩
	require.NoError(t, s.ApplyGate(lang.X, 0))
	outcome, err = s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), outcome)
}

// H дважды тождественен, одиночный H дает суперпозицию
func TestApplyH(t *testing.T) {
	s, err := sim.New(1)
	require.NoError(t, err)

	require.NoError(t, s.ApplyGate(lang.H, 0))
	_, err = s.BasisOutcome(0)
	assert.ErrorIs(t, err, sim.ErrNotBasisState)
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)

	require.NoError(t, s.ApplyGate(lang.H, 0))
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), outcome)
}

// S поворачивает фазу |1⟩ на i
func TestApplyPhase(t *testing.T) {
	s, err := sim.New(1)
	require.NoError(t, err)

	require.NoError(t, s.ApplyGate(lang.X, 0))
	require.NoError(t, s.ApplyGate(lang.S, 0))

	amp, err := s.Amplitude(1)
	require.NoError(t, err)
	assert.InDelta(t, 0, real(amp), 1e-12)
	assert.InDelta(t, 1, imag(amp), 1e-12)
}

func TestBellState(t *testing.T) {
	s, err := sim.New(2)
	require.NoError(t, err)

	require.NoError(t, s.ApplyGate(lang.H, 0))
	require.NoError(t, s.ApplyGate(lang.CNOT, 0, 1))

	probs := s.Probabilities(0)
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[3], 1e-12)
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

// Управляемый вентиль не действует при снятом управлении
func TestControlledGate(t *testing.T) {
	s, err := sim.New(2)
	require.NoError(t, err)

	// Управление |0⟩: цель не меняется
	require.NoError(t, s.ApplyGate(lang.CNOT, 0, 1))
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), outcome)

	// Управление |1⟩: цель инвертируется
	require.NoError(t, s.SetBasisState(1))
	require.NoError(t, s.ApplyGate(lang.CNOT, 0, 1))
	outcome, err = s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), outcome)
}

func TestApplyGateValidation(t *testing.T) {
	s, err := sim.New(2)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ApplyGate(lang.CNOT, 0), lang.ErrArityMismatch)
	assert.ErrorIs(t, s.ApplyGate(lang.X, 2), sim.ErrQubitOutOfRange)
	assert.ErrorIs(t, s.ApplyGate(lang.X, -1), sim.ErrQubitOutOfRange)
	assert.ErrorIs(t, s.ApplyGate(lang.CNOT, 1, 1), sim.ErrDuplicateQubit)
}

func TestSetBasisState(t *testing.T) {
	s, err := sim.New(2)
	require.NoError(t, err)

	require.NoError(t, s.SetBasisState(3))
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), outcome)

	assert.ErrorIs(t, s.SetBasisState(4), sim.ErrInvalidBasisState)

	s.Reset()
	outcome, err = s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), outcome)
}

func TestRunProgram(t *testing.T) {
	r := lang.New("INC")
	ws := r.NewWires(2)
	require.NoError(t, r.Apply(lang.CNOT, ws[0], ws[1]))
	require.NoError(t, r.Apply(lang.X, ws[0]))

	prog, err := lang.Flatten(r)
	require.NoError(t, err)

	s, err := sim.New(2)
	require.NoError(t, err)

	// Инкремент по модулю 4: |01⟩ -> |10⟩
	require.NoError(t, s.RunProgram(prog, 1))
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), outcome)

	// Вход шире формального регистра
	assert.ErrorIs(t, s.RunProgram(prog, 4), sim.ErrInvalidBasisState)
}

func TestRunTooWide(t *testing.T) {
	prog, err := lang.Flatten(lang.X.Ctrl(2))
	require.NoError(t, err)

	s, err := sim.New(2)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(prog), sim.ErrProgramTooWide)
}

// Измерение базисного состояния детерминировано
func TestMeasureBasisState(t *testing.T) {
	s, err := sim.New(2, sim.WithSeed(42))
	require.NoError(t, err)

	require.NoError(t, s.ApplyGate(lang.X, 1))

	m, err := s.MeasureQubit(1)
	require.NoError(t, err)
	assert.Equal(t, 1, m)

	m, err = s.MeasureQubit(0)
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

// Измерения запутанных кубитов согласованы
func TestMeasureEntangled(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		s, err := sim.New(2, sim.WithSeed(seed))
		require.NoError(t, err)

		require.NoError(t, s.ApplyGate(lang.H, 0))
		require.NoError(t, s.ApplyGate(lang.CNOT, 0, 1))

		m0, err := s.MeasureQubit(0)
		require.NoError(t, err)
		m1, err := s.MeasureQubit(1)
		require.NoError(t, err)

		assert.Equal(t, m0, m1, "seed=%d", seed)
		assert.InDelta(t, 1.0, s.Norm(), 1e-12)
	}
}

func TestMeasureAll(t *testing.T) {
	s, err := sim.New(3, sim.WithSeed(7))
	require.NoError(t, err)

	require.NoError(t, s.SetBasisState(5))
	result, err := s.MeasureAll()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result)

	// Состояние коллапсировало в измеренный базисный вектор
	outcome, err := s.BasisOutcome(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), outcome)
}

func TestMeasureOutOfRange(t *testing.T) {
	s, err := sim.New(1)
	require.NoError(t, err)

	_, err = s.MeasureQubit(1)
	assert.ErrorIs(t, err, sim.ErrQubitOutOfRange)
}

func TestStateVectorCopy(t *testing.T) {
	s, err := sim.New(1)
	require.NoError(t, err)

	v := s.StateVector()
	require.Len(t, v, 2)
	v[0] = 0

	// Изменение копии не затрагивает симулятор
	amp, err := s.Amplitude(0)
	require.NoError(t, err)
	assert.Equal(t, complex128(1), amp)
}

// Норма сохраняется на длинной последовательности вентилей
func TestNormPreserved(t *testing.T) {
	s, err := sim.New(3, sim.WithSeed(1))
	require.NoError(t, err)

	gates := []lang.Gate{
		lang.H, lang.T, lang.RX(math.Pi / 3), lang.RY(0.7), lang.RZ(1.9), lang.S,
	}
	for i, g := range gates {
		require.NoError(t, s.ApplyGate(g, i%3))
	}
	require.NoError(t, s.ApplyGate(lang.CNOT, 0, 2))
	require.NoError(t, s.ApplyGate(lang.PH(math.Pi/5).Ctrl(1), 1, 0))

	assert.InDelta(t, 1.0, s.Norm(), 1e-10)
}
