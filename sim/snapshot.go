// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package sim

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/golang/snappy"
)

var (
	// ErrBadSnapshot ошибка, возникающая при декодировании поврежденного снимка
	ErrBadSnapshot = errors.New("поврежденный снимок истории состояний")

	// ErrStateIndex ошибка, возникающая при запросе несуществующего состояния истории
	ErrStateIndex = errors.New("индекс состояния вне истории")
)

// defaultThreshold порог дельты, ниже которого изменения амплитуд не сохраняются
const defaultThreshold = 1e-9

// History хранит историю векторов состояния в дельта-сжатом виде:
// базовое состояние и последовательность значимых изменений амплитуд
type History struct {
	// Базовое состояние, относительно которого вычисляются дельты
	base []complex128

	// Последнее записанное состояние
	last []complex128

	// Порог дельты, ниже которого значения считаются незначительными
	threshold float64

	// Записанные дельты
	deltas []stateDelta

	mutex sync.RWMutex
}

// stateDelta представляет изменение вектора состояния между двумя записями
type stateDelta struct {
	indices []uint32
	values  []complex128
	stamp   int64
}

// NewHistory создает историю состояний с указанным порогом значимости дельт
func NewHistory(initial []complex128, threshold float64) *History {
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	h := &History{threshold: threshold}

	if len(initial) > 0 {
		h.base = append([]complex128(nil), initial...)
		h.last = append([]complex128(nil), initial...)
	}

	return h
}

// Record записывает новое состояние, сохраняя только значимые изменения
// относительно предыдущего
func (h *History) Record(state []complex128) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Первое состояние или смена размерности: история начинается заново
	if len(h.base) != len(state) {
		h.base = append([]complex128(nil), state...)
		h.last = append([]complex128(nil), state...)
		h.deltas = nil
		return
	}

	var d stateDelta
	for i := range state {
		delta := state[i] - h.last[i]
		if magnitude(delta) > h.threshold {
			d.indices = append(d.indices, uint32(i))
			d.values = append(d.values, delta)
		}
	}
	d.stamp = time.Now().UnixNano()

	h.deltas = append(h.deltas, d)
	copy(h.last, state)
}

// Len возвращает количество записанных состояний, включая базовое
func (h *History) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.base == nil {
		return 0
	}
	return len(h.deltas) + 1
}

// StateAt восстанавливает состояние после index-й записи:
// index 0 соответствует базовому состоянию
func (h *History) StateAt(index int) ([]complex128, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.base == nil || index < 0 || index > len(h.deltas) {
		return nil, ErrStateIndex
	}

	result := append([]complex128(nil), h.base...)
	for i := 0; i < index; i++ {
		d := h.deltas[i]
		for j, idx := range d.indices {
			result[idx] += d.values[j]
		}
	}

	return result, nil
}

// Last возвращает последнее записанное состояние
func (h *History) Last() []complex128 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return append([]complex128(nil), h.last...)
}

// CompressionRatio возвращает отношение размера сжатых дельт
// к размеру полной истории
func (h *History) CompressionRatio() float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if len(h.deltas) == 0 || len(h.base) == 0 {
		return 1.0
	}

	total := len(h.base) * len(h.deltas)
	compressed := 0
	for _, d := range h.deltas {
		compressed += len(d.indices)
	}

	return float64(compressed) / float64(total)
}

// Encode сериализует историю в snappy-сжатый бинарный формат
func (h *History) Encode() ([]byte, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var buf bytes.Buffer

	write := func(v any) error { return binary.Write(&buf, binary.LittleEndian, v) }

	if err := write(uint32(len(h.base))); err != nil {
		return nil, err
	}
	if err := write(uint32(len(h.deltas))); err != nil {
		return nil, err
	}
	if err := write(h.threshold); err != nil {
		return nil, err
	}
	for _, a := range h.base {
		if err := write(real(a)); err != nil {
			return nil, err
		}
		if err := write(imag(a)); err != nil {
			return nil, err
		}
	}
	for _, d := range h.deltas {
		if err := write(uint32(len(d.indices))); err != nil {
			return nil, err
		}
		if err := write(d.stamp); err != nil {
			return nil, err
		}
		for j, idx := range d.indices {
			if err := write(idx); err != nil {
				return nil, err
			}
			if err := write(real(d.values[j])); err != nil {
				return nil, err
			}
			if err := write(imag(d.values[j])); err != nil {
				return nil, err
			}
		}
	}

	return snappy.Encode(nil, buf.Bytes()), nil
}

// DecodeHistory восстанавливает историю из snappy-сжатого бинарного формата
func DecodeHistory(data []byte) (*History, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Join(ErrBadSnapshot, err)
	}

	buf := bytes.NewReader(raw)
	read := func(v any) error { return binary.Read(buf, binary.LittleEndian, v) }

	var baseLen, deltaCount uint32
	var threshold float64
	if err := read(&baseLen); err != nil {
		return nil, errors.Join(ErrBadSnapshot, err)
	}
	if err := read(&deltaCount); err != nil {
		return nil, errors.Join(ErrBadSnapshot, err)
	}
	if err := read(&threshold); err != nil {
		return nil, errors.Join(ErrBadSnapshot, err)
	}

	// Счетчики из недоверенных данных ограничиваются размером
	// оставшейся полезной нагрузки: 16 байт на амплитуду
	if uint64(baseLen)*16 > uint64(buf.Len()) {
		return nil, ErrBadSnapshot
	}

	h := &History{threshold: threshold}
	h.base = make([]complex128, baseLen)
	for i := range h.base {
		var re, im float64
		if err := read(&re); err != nil {
			return nil, errors.Join(ErrBadSnapshot, err)
		}
		if err := read(&im); err != nil {
			return nil, errors.Join(ErrBadSnapshot, err)
		}
		h.base[i] = complex(re, im)
	}

	// Каждая дельта занимает не менее 12 байт: счетчик и штамп времени
	if uint64(deltaCount)*12 > uint64(buf.Len()) {
		return nil, ErrBadSnapshot
	}

	h.deltas = make([]stateDelta, deltaCount)
	for i := range h.deltas {
		var n uint32
		if err := read(&n); err != nil {
			return nil, errors.Join(ErrBadSnapshot, err)
		}
		if err := read(&h.deltas[i].stamp); err != nil {
			return nil, errors.Join(ErrBadSnapshot, err)
		}
		// Запись дельты: индекс и комплексное значение, 20 байт
		if uint64(n)*20 > uint64(buf.Len()) {
			return nil, ErrBadSnapshot
		}
		h.deltas[i].indices = make([]uint32, n)
		h.deltas[i].values = make([]complex128, n)
		for j := range h.deltas[i].indices {
			var idx uint32
			var re, im float64
			if err := read(&idx); err != nil {
				return nil, errors.Join(ErrBadSnapshot, err)
			}
			if err := read(&re); err != nil {
				return nil, errors.Join(ErrBadSnapshot, err)
			}
			if err := read(&im); err != nil {
				return nil, errors.Join(ErrBadSnapshot, err)
			}
			if idx >= baseLen {
				return nil, ErrBadSnapshot
			}
			h.deltas[i].indices[j] = idx
			h.deltas[i].values[j] = complex(re, im)
		}
	}

	// Восстанавливаем последнее состояние применением всех дельт
	h.last = append([]complex128(nil), h.base...)
	for _, d := range h.deltas {
		for j, idx := range d.indices {
			h.last[idx] += d.values[j]
		}
	}

	return h, nil
}

// magnitude возвращает модуль комплексного числа
func magnitude(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}
