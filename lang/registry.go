package lang

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateGate ошибка, возникающая при повторной регистрации имени вентиля
	ErrDuplicateGate = errors.New("вентиль с таким именем уже зарегистрирован")

	// ErrGateNotFound ошибка, возникающая при запросе незарегистрированного вентиля
	ErrGateNotFound = errors.New("вентиль не зарегистрирован")

	// ErrArityFunc ошибка, возникающая при несоответствии построенной рутины заявленной арности
	ErrArityFunc = errors.New("арность построенной рутины не соответствует заявленной")
)

// Generator строит рутину для заданного целочисленного параметра
type Generator func(n int) (*Routine, error)

// AbstractGate представляет именованный параметризованный вентиль:
// генератор рутины вместе с функцией арности. Построенные рутины
// кешируются по значению параметра.
type AbstractGate struct {
	name    string
	arityFn func(int) int
	gen     Generator

	mu    sync.Mutex
	cache map[int]*Routine
}

// NewAbstractGate создает параметризованный вентиль с именем name,
// функцией арности arityFn и генератором gen
func NewAbstractGate(name string, arityFn func(int) int, gen Generator) *AbstractGate {
	return &AbstractGate{
		name:    name,
		arityFn: arityFn,
		gen:     gen,
		cache:   make(map[int]*Routine),
	}
}

// GateName возвращает имя параметризованного вентиля
func (a *AbstractGate) GateName() string {
	return a.name
}

// Arity возвращает арность вентиля для параметра n
func (a *AbstractGate) Arity(n int) int {
	return a.arityFn(n)
}

// Build строит (или возвращает из кеша) рутину для параметра n
// и проверяет соответствие заявленной арности
func (a *AbstractGate) Build(n int) (*Routine, error) {
	a.mu.Lock()
	if r, ok := a.cache[n]; ok {
		a.mu.Unlock()
		return r, nil
	}
	a.mu.Unlock()

	r, err := a.gen(n)
	if err != nil {
		return nil, err
	}

	if want := a.arityFn(n); r.Arity() != want {
		return nil, fmt.Errorf("%w: %s(%d) имеет арность %d, заявлено %d",
			ErrArityFunc, a.name, n, r.Arity(), want)
	}

	a.mu.Lock()
	a.cache[n] = r
	a.mu.Unlock()

	return r, nil
}

// Глобальный реестр параметризованных вентилей
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*AbstractGate)
)

// Register добавляет вентиль в глобальный реестр.
// Повторная регистрация имени возвращает ошибку.
func Register(g *AbstractGate) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[g.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGate, g.name)
	}
	registry[g.name] = g

	return nil
}

// MustRegister добавляет вентиль в реестр и паникует при конфликте имен.
// Используется при инициализации пакетов.
func MustRegister(g *AbstractGate) *AbstractGate {
	if err := Register(g); err != nil {
		panic(err)
	}
	return g
}

// Lookup возвращает вентиль по имени
func Lookup(name string) (*AbstractGate, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	g, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGateNotFound, name)
	}

	return g, nil
}

// RegisteredGates возвращает имена всех зарегистрированных вентилей
func RegisteredGates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	return names
}
