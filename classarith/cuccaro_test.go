package classarith_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillay12321/qlang/classarith"
	"github.com/fillay12321/qlang/lang"
	"github.com/fillay12321/qlang/sim"
)

func TestBadWidth(t *testing.T) {
	for _, n := range []int{-1, 0} {
		_, err := classarith.CuccaroAdd(n)
		assert.ErrorIs(t, err, classarith.ErrBadWidth, "n=%d", n)
	}
}

// Раскладка входа сумматора по формальным проводам:
// a[0..n), b[0..n), z — младшие биты первыми
func addInput(n int, a, b, z uint64) uint64 {
	return a | b<<n | z<<(2*n)
}

func TestCuccaroAddTruthTable(t *testing.T) {
	for n := 1; n <= 3; n++ {
		rout, err := classarith.CuccaroAdd(n)
		require.NoError(t, err)
		assert.Equal(t, 2*n+1, rout.Arity())

		prog, err := lang.Flatten(rout)
		require.NoError(t, err)

		// Единственная анцилла под входной перенос
		assert.Equal(t, 2*n+2, prog.Width)
		assert.Equal(t, 1, prog.MaxAncillae)

		table, err := sim.TruthTable(prog)
		require.NoError(t, err)

		mask := (uint64(1) << n) - 1
		for a := uint64(0); a <= mask; a++ {
			for b := uint64(0); b <= mask; b++ {
				for z := uint64(0); z <= 1; z++ {
					got := table[addInput(n, a, b, z)]

					sum := a + b
					wantB := sum & mask
					wantZ := z ^ (sum >> n)
					want := addInput(n, a, wantB, wantZ)

					assert.Equal(t, want, got,
						"n=%d: a=%d, b=%d, z=%d", n, a, b, z)
				}
			}
		}
	}
}

// Сумматор обратим: прямое и обращенное применение дают тождество
func TestCuccaroAddInvertible(t *testing.T) {
	add, err := classarith.CuccaroAdd(2)
	require.NoError(t, err)
	sub, err := add.Dagger()
	require.NoError(t, err)

	wrap := lang.New("ADD_SUB")
	ws := wrap.NewWires(add.Arity())
	require.NoError(t, wrap.Apply(add, ws...))
	require.NoError(t, wrap.Apply(sub, ws...))

	prog, err := lang.Flatten(wrap)
	require.NoError(t, err)
	table, err := sim.TruthTable(prog)
	require.NoError(t, err)

	for input, output := range table {
		assert.Equal(t, uint64(input), output)
	}
}

func TestRegisteredAdder(t *testing.T) {
	g, err := lang.Lookup("CUCCARO_ADD")
	require.NoError(t, err)
	assert.Equal(t, 7, g.Arity(3))

	rout, err := g.Build(3)
	require.NoError(t, err)
	assert.Equal(t, 7, rout.Arity())
}
