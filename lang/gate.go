// Package lang реализует примитивы построения квантовых схем:
// вентили, рутины (переиспользуемые фрагменты схем), провода и
// реестр параметризованных вентилей.
package lang

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

var (
	// ErrUnknownGate ошибка, возникающая при запросе матрицы неизвестного вентиля
	ErrUnknownGate = errors.New("неизвестный базовый вентиль")

	// ErrInvalidControls ошибка, возникающая при отрицательном количестве управляющих кубитов
	ErrInvalidControls = errors.New("количество управляющих кубитов должно быть неотрицательным")
)

// Gate представляет именованный примитивный вентиль, действующий на один
// целевой кубит, с произвольным количеством управляющих кубитов.
// Значение неизменяемо: Ctrl и Dagger возвращают копию.
type Gate struct {
	name     string
	params   []float64
	controls int
	dagger   bool
}

// Базовые однокубитные вентили
var (
	X = Gate{name: "X"}
	Y = Gate{name: "Y"}
	Z = Gate{name: "Z"}
	H = Gate{name: "H"}
	S = Gate{name: "S"}
	T = Gate{name: "T"}

	// CNOT и CCNOT (Тоффоли) как удобные сокращения
	CNOT  = X.Ctrl(1)
	CCNOT = X.Ctrl(2)
)

// PH возвращает вентиль фазового сдвига: |1⟩ -> e^(i*theta)|1⟩
func PH(theta float64) Gate {
	return Gate{name: "PH", params: []float64{theta}}
}

// RX возвращает вентиль вращения вокруг оси X на угол theta
func RX(theta float64) Gate {
	return Gate{name: "RX", params: []float64{theta}}
}

// RY возвращает вентиль вращения вокруг оси Y на угол theta
func RY(theta float64) Gate {
	return Gate{name: "RY", params: []float64{theta}}
}

// RZ возвращает вентиль вращения вокруг оси Z на угол theta
func RZ(theta float64) Gate {
	return Gate{name: "RZ", params: []float64{theta}}
}

// Ctrl возвращает копию вентиля с k дополнительными управляющими кубитами.
// Отрицательное k игнорируется.
func (g Gate) Ctrl(k int) Gate {
	if k < 0 {
		return g
	}
	ng := g
	ng.controls += k
	ng.params = append([]float64(nil), g.params...)
	return ng
}

// Dagger возвращает эрмитово-сопряженный вентиль.
// Самообратные вентили (X, Y, Z, H) возвращаются без пометки сопряжения.
func (g Gate) Dagger() Gate {
	ng := g
	ng.params = append([]float64(nil), g.params...)

	switch g.name {
	case "X", "Y", "Z", "H":
		return ng
	}

	ng.dagger = !g.dagger
	return ng
}

// BaseName возвращает имя базового вентиля без учета управлений и сопряжения
func (g Gate) BaseName() string {
	return g.name
}

// Name возвращает полное имя вентиля, например "C-C-X" или "PH†"
func (g Gate) Name() string {
	var sb strings.Builder
	for i := 0; i < g.controls; i++ {
		sb.WriteString("C-")
	}
	sb.WriteString(g.name)
	if g.dagger {
		sb.WriteString("†")
	}
	return sb.String()
}

// Controls возвращает количество управляющих кубитов
func (g Gate) Controls() int {
	return g.controls
}

// IsDagger возвращает true, если вентиль эрмитово сопряжен
func (g Gate) IsDagger() bool {
	return g.dagger
}

// Params возвращает копию параметров вентиля (углы вращений и фаз)
func (g Gate) Params() []float64 {
	return append([]float64(nil), g.params...)
}

// Theta возвращает первый параметр вентиля или 0, если параметров нет
func (g Gate) Theta() float64 {
	if len(g.params) == 0 {
		return 0
	}
	return g.params[0]
}

// Arity возвращает общее количество проводов вентиля: управляющие + целевой
func (g Gate) Arity() int {
	return g.controls + 1
}

// Matrix возвращает матрицу 2x2 базового вентиля (без учета управлений).
// Для сопряженного вентиля возвращается эрмитово-сопряженная матрица.
func (g Gate) Matrix() ([2][2]complex128, error) {
	var m [2][2]complex128

	switch g.name {
	case "X":
		m = [2][2]complex128{{0, 1}, {1, 0}}
	case "Y":
		m = [2][2]complex128{{0, -1i}, {1i, 0}}
	case "Z":
		m = [2][2]complex128{{1, 0}, {0, -1}}
	case "H":
		h := complex(1/math.Sqrt2, 0)
		m = [2][2]complex128{{h, h}, {h, -h}}
	case "S":
		m = [2][2]complex128{{1, 0}, {0, 1i}}
	case "T":
		m = [2][2]complex128{{1, 0}, {0, cmplx.Rect(1, math.Pi/4)}}
	case "PH":
		m = [2][2]complex128{{1, 0}, {0, cmplx.Rect(1, g.Theta())}}
	case "RX":
		c := complex(math.Cos(g.Theta()/2), 0)
		js := complex(0, -math.Sin(g.Theta()/2))
		m = [2][2]complex128{{c, js}, {js, c}}
	case "RY":
		c := complex(math.Cos(g.Theta()/2), 0)
		s := complex(math.Sin(g.Theta()/2), 0)
		m = [2][2]complex128{{c, -s}, {s, c}}
	case "RZ":
		p := cmplx.Rect(1, g.Theta()/2)
		m = [2][2]complex128{{cmplx.Conj(p), 0}, {0, p}}
	default:
		return m, fmt.Errorf("%w: %s", ErrUnknownGate, g.name)
	}

	if g.dagger {
		// Эрмитово сопряжение: транспонирование + комплексное сопряжение
		m = [2][2]complex128{
			{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
			{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
		}
	}

	return m, nil
}
