// Package sim реализует симулятор вектора состояния для исполнения
// развернутых квантовых схем и проверки их табличной эквивалентности.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fillay12321/qlang/internal/profile"
	"github.com/fillay12321/qlang/lang"
)

const (
	// MaxQubits максимальное поддерживаемое количество кубитов:
	// 25 кубитов = 2^25 = 33 554 432 комплексных амплитуд
	MaxQubits = 25

	// DefaultEpsilon порог, ниже которого вероятность считается нулевой
	DefaultEpsilon = 1e-9
)

var (
	// ErrInvalidQubitCount ошибка, возникающая при недопустимом количестве кубитов
	ErrInvalidQubitCount = errors.New("недопустимое количество кубитов")

	// ErrQubitOutOfRange ошибка, возникающая при выходе индекса кубита за пределы диапазона
	ErrQubitOutOfRange = errors.New("индекс кубита выходит за пределы доступного диапазона")

	// ErrDuplicateQubit ошибка, возникающая при повторном использовании кубита в одном вентиле
	ErrDuplicateQubit = errors.New("кубит использован в вентиле более одного раза")

	// ErrInvalidBasisState ошибка, возникающая при недопустимом базисном состоянии
	ErrInvalidBasisState = errors.New("недопустимое базисное состояние")

	// ErrProgramTooWide ошибка, возникающая когда схеме требуется больше кубитов, чем есть у симулятора
	ErrProgramTooWide = errors.New("схеме требуется больше кубитов, чем выделено симулятору")

	// ErrNotBasisState ошибка, возникающая когда состояние не является базисным
	ErrNotBasisState = errors.New("состояние не является вычислительным базисным")
)

// Simulator представляет симулятор вектора состояния.
// Для n кубитов хранится 2^n комплексных амплитуд.
type Simulator struct {
	// Количество кубитов в системе
	numQubits int

	// Квантовое состояние системы (амплитуды)
	state []complex128

	// Мьютекс для потокобезопасности
	mutex sync.Mutex

	// Генератор случайных чисел для измерений
	random *rand.Rand

	// Логгер (по умолчанию отключен)
	logger *zap.SugaredLogger

	// Профайлер применений вентилей (по умолчанию отключен)
	prof *profile.Profiler
}

// Option настраивает симулятор при создании
type Option func(*Simulator)

// WithLogger подключает структурированный логгер
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithSeed фиксирует зерно генератора случайных чисел измерений
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.random = rand.New(rand.NewSource(seed)) }
}

// WithProfiler подключает профайлер применений вентилей
func WithProfiler(p *profile.Profiler) Option {
	return func(s *Simulator) { s.prof = p }
}

// New создает симулятор с заданным количеством кубитов
// в начальном состоянии |0...0⟩
func New(numQubits int, opts ...Option) (*Simulator, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQubitCount, numQubits)
	}
	if numQubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d, максимум %d", ErrInvalidQubitCount, numQubits, MaxQubits)
	}

	state := make([]complex128, 1<<numQubits)
	state[0] = 1

	s := &Simulator{
		numQubits: numQubits,
		state:     state,
		random:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debugw("создан симулятор", "qubits", numQubits, "amplitudes", len(state))

	return s, nil
}

// NumQubits возвращает количество кубитов симулятора
func (s *Simulator) NumQubits() int {
	return s.numQubits
}

// Reset сбрасывает состояние в начальное |0...0⟩
func (s *Simulator) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.state {
		s.state[i] = 0
	}
	s.state[0] = 1
}

// SetBasisState переводит симулятор в указанное базисное состояние
func (s *Simulator) SetBasisState(basis uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if basis >= uint64(len(s.state)) {
		return fmt.Errorf("%w: %d", ErrInvalidBasisState, basis)
	}

	for i := range s.state {
		s.state[i] = 0
	}
	s.state[basis] = 1

	return nil
}

// checkQubitIndex проверяет, что индекс кубита допустим
func (s *Simulator) checkQubitIndex(qubit int) error {
	if qubit < 0 || qubit >= s.numQubits {
		return fmt.Errorf("%w: %d", ErrQubitOutOfRange, qubit)
	}
	return nil
}

// ApplyGate применяет вентиль к указанным кубитам: сначала перечисляются
// управляющие кубиты, последним — целевой. Количество кубитов должно
// соответствовать арности вентиля.
func (s *Simulator) ApplyGate(g lang.Gate, qubits ...int) error {
	if len(qubits) != g.Arity() {
		return fmt.Errorf("%w: вентиль %s требует %d кубитов, передано %d",
			lang.ErrArityMismatch, g.Name(), g.Arity(), len(qubits))
	}

	if s.prof != nil {
		s.prof.StartOperation("gate." + g.BaseName())
		defer s.prof.EndOperation("gate." + g.BaseName())
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	seen := 0
	for _, q := range qubits {
		if err := s.checkQubitIndex(q); err != nil {
			return err
		}
		if seen&(1<<q) != 0 {
			return fmt.Errorf("%w: %d", ErrDuplicateQubit, q)
		}
		seen |= 1 << q
	}

	controls := qubits[:len(qubits)-1]
	target := qubits[len(qubits)-1]

	// Быстрый путь для X: перестановка амплитуд без матричной арифметики
	if g.BaseName() == "X" {
		s.applyControlledX(controls, target)
		return nil
	}

	m, err := g.Matrix()
	if err != nil {
		return err
	}
	s.applyControlled(m, controls, target)

	return nil
}

// applyControlledX инвертирует целевой кубит для базисных состояний,
// где все управляющие биты установлены
func (s *Simulator) applyControlledX(controls []int, target int) {
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	tbit := 1 << target

	for i := 0; i < len(s.state); i++ {
		if i&mask == mask && i&tbit == 0 {
			j := i | tbit
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
}

// applyControlled применяет матрицу 2x2 к целевому кубиту для базисных
// состояний, где все управляющие биты установлены
func (s *Simulator) applyControlled(m [2][2]complex128, controls []int, target int) {
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	tbit := 1 << target

	for i := 0; i < len(s.state); i++ {
		if i&mask == mask && i&tbit == 0 {
			j := i | tbit
			a0, a1 := s.state[i], s.state[j]
			s.state[i] = m[0][0]*a0 + m[0][1]*a1
			s.state[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// Run исполняет развернутую схему над текущим состоянием симулятора
func (s *Simulator) Run(prog *lang.Program) error {
	if prog.Width > s.numQubits {
		return fmt.Errorf("%w: ширина %d, кубитов %d", ErrProgramTooWide, prog.Width, s.numQubits)
	}

	if s.prof != nil {
		s.prof.StartOperation("run." + prog.Name)
		defer s.prof.EndOperation("run." + prog.Name)
	}

	for _, bg := range prog.Gates {
		if err := s.ApplyGate(bg.Gate, bg.Qubits...); err != nil {
			return fmt.Errorf("вентиль %s: %w", bg.Gate.Name(), err)
		}
	}

	return nil
}

// RunProgram сбрасывает симулятор, готовит базисное состояние input
// на формальных кубитах схемы (анциллы остаются в |0⟩) и исполняет схему
func (s *Simulator) RunProgram(prog *lang.Program, input uint64) error {
	if prog.Arity > 0 && input >= uint64(1)<<prog.Arity {
		return fmt.Errorf("%w: вход %d не помещается в %d формальных кубитов",
			ErrInvalidBasisState, input, prog.Arity)
	}

	if err := s.SetBasisState(input); err != nil {
		return err
	}

	return s.Run(prog)
}

// StateVector возвращает копию текущего вектора состояния
func (s *Simulator) StateVector() []complex128 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stateCopy := make([]complex128, len(s.state))
	copy(stateCopy, s.state)

	return stateCopy
}

// Amplitude возвращает амплитуду указанного базисного состояния
func (s *Simulator) Amplitude(basis uint64) (complex128, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if basis >= uint64(len(s.state)) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBasisState, basis)
	}

	return s.state[basis], nil
}

// Norm возвращает норму вектора состояния (для корректного состояния равна 1)
func (s *Simulator) Norm() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sum := 0.0
	for _, a := range s.state {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}

	return math.Sqrt(sum)
}

// BasisOutcome возвращает базисное состояние, в котором сосредоточена
// вся вероятность текущего состояния. Если состояние находится в
// суперпозиции, возвращается ошибка ErrNotBasisState.
func (s *Simulator) BasisOutcome(epsilon float64) (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	for i, a := range s.state {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p > 1-epsilon {
			return uint64(i), nil
		}
	}

	return 0, ErrNotBasisState
}

// MeasureQubit измеряет указанный кубит и возвращает результат (0 или 1),
// коллапсируя состояние в соответствии с результатом
func (s *Simulator) MeasureQubit(qubit int) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkQubitIndex(qubit); err != nil {
		return -1, err
	}

	// Вычисляем вероятность измерения |1⟩
	prob1 := 0.0
	bit := 1 << qubit
	for i, a := range s.state {
		if i&bit != 0 {
			prob1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}

	result := 0
	if s.random.Float64() < prob1 {
		result = 1
	}

	// Коллапсируем состояние в соответствии с результатом измерения
	norm := 0.0
	for i := range s.state {
		b := 0
		if i&bit != 0 {
			b = 1
		}
		if b != result {
			s.state[i] = 0
		} else {
			norm += real(s.state[i])*real(s.state[i]) + imag(s.state[i])*imag(s.state[i])
		}
	}

	// Нормализуем состояние
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range s.state {
			s.state[i] /= complex(norm, 0)
		}
	}

	s.logger.Debugw("измерен кубит", "qubit", qubit, "result", result, "prob1", prob1)

	return result, nil
}

// MeasureAll измеряет все кубиты и возвращает результат как целое число,
// коллапсируя состояние в выбранный базисный вектор
func (s *Simulator) MeasureAll() (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r := s.random.Float64()
	cumulative := 0.0
	result := uint64(len(s.state) - 1)

	for i, a := range s.state {
		cumulative += real(a)*real(a) + imag(a)*imag(a)
		if r < cumulative {
			result = uint64(i)
			break
		}
	}

	for i := range s.state {
		s.state[i] = 0
	}
	s.state[result] = 1

	return result, nil
}

// Probabilities возвращает вероятности всех базисных состояний,
// превышающие epsilon
func (s *Simulator) Probabilities(epsilon float64) map[uint64]float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	probs := make(map[uint64]float64)
	for i, a := range s.state {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p > epsilon {
			probs[uint64(i)] = p
		}
	}

	return probs
}
