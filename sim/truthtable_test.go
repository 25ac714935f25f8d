package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fillay12321/qlang/lang"
	"github.com/fillay12321/qlang/sim"
)

// Параллельный перебор входов не должен оставлять горутин
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTruthTableCCX(t *testing.T) {
	prog, err := lang.Flatten(lang.X.Ctrl(2))
	require.NoError(t, err)

	table, err := sim.TruthTable(prog)
	require.NoError(t, err)
	require.Len(t, table, 8)

	for input, output := range table {
		want := uint64(input)
		if input&3 == 3 {
			want ^= 4
		}
		assert.Equal(t, want, output, "вход %b", input)
	}
}

func TestTruthTableIdentity(t *testing.T) {
	r := lang.New("NOOP")
	ws := r.NewWires(2)
	require.NoError(t, r.Apply(lang.X, ws[0]))
	require.NoError(t, r.Apply(lang.X, ws[0]))

	prog, err := lang.Flatten(r)
	require.NoError(t, err)

	table, err := sim.TruthTable(prog)
	require.NoError(t, err)
	for input, output := range table {
		assert.Equal(t, uint64(input), output)
	}
}

// Грязная анцилла обнаруживается на каждом входе
func TestTruthTableDirtyAncilla(t *testing.T) {
	prog := &lang.Program{
		Name:  "DIRTY",
		Arity: 1,
		Width: 2,
		Gates: []lang.BoundGate{
			{Gate: lang.X, Qubits: []int{1}},
		},
	}

	_, err := sim.TruthTable(prog)
	assert.ErrorIs(t, err, sim.ErrAncillaNotRestored)
}

// Схема, оставляющая суперпозицию, не имеет таблицы истинности
func TestTruthTableSuperposition(t *testing.T) {
	prog, err := lang.Flatten(lang.H)
	require.NoError(t, err)

	_, err = sim.TruthTable(prog)
	assert.ErrorIs(t, err, sim.ErrNotBasisState)
}

func TestTruthTableTooWide(t *testing.T) {
	prog := &lang.Program{Arity: 21, Width: 21}

	_, err := sim.TruthTable(prog)
	assert.ErrorIs(t, err, sim.ErrTableTooWide)
}

// CNOT совпадает с конструкцией H-CZ-H
func TestEquivalent(t *testing.T) {
	r := lang.New("CNOT_VIA_CZ")
	ws := r.NewWires(2)
	require.NoError(t, r.Apply(lang.H, ws[1]))
	require.NoError(t, r.Apply(lang.Z.Ctrl(1), ws[0], ws[1]))
	require.NoError(t, r.Apply(lang.H, ws[1]))

	ok, err := sim.Equivalent(lang.CNOT, r)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNotEquivalent(t *testing.T) {
	ok, err := sim.Equivalent(lang.CNOT, lang.Z.Ctrl(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEquivalentArityDiffers(t *testing.T) {
	_, err := sim.Equivalent(lang.X, lang.CNOT)
	assert.ErrorIs(t, err, sim.ErrArityDiffers)
}
