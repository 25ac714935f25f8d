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

// Package hwinfo определяет аппаратные ресурсы системы и оценивает
// максимальный размер симулируемого квантового состояния
package hwinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Количество байт на одну комплексную амплитуду (два float64)
const bytesPerAmplitude = 16

// hardLimit верхняя граница количества кубитов независимо от памяти
const hardLimit = 25

// Info предоставляет информацию об аппаратном обеспечении системы
type Info struct {
	CPUCores        int
	CPUThreads      int
	MemoryTotal     uint64
	MemoryAvailable uint64
}

// Detect определяет доступные аппаратные ресурсы.
// При недоступности системных счетчиков используются консервативные
// значения по умолчанию.
func Detect() *Info {
	info := &Info{
		CPUCores:   runtime.NumCPU(),
		CPUThreads: runtime.NumCPU(),
	}

	if cores, err := cpu.Counts(false); err == nil && cores > 0 {
		info.CPUCores = cores
	}
	if threads, err := cpu.Counts(true); err == nil && threads > 0 {
		info.CPUThreads = threads
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryAvailable = vm.Available
	} else {
		// 4 ГБ по умолчанию, когда память определить не удалось
		info.MemoryTotal = 4 << 30
		info.MemoryAvailable = 2 << 30
	}

	return info
}

// MaxQubits возвращает максимальное количество кубитов, вектор состояния
// которых помещается в половину доступной памяти
func (i *Info) MaxQubits() int {
	budget := i.MemoryAvailable / 2

	n := 0
	for amplitudes := uint64(2); n < hardLimit; amplitudes <<= 1 {
		if amplitudes*bytesPerAmplitude > budget {
			break
		}
		n++
	}

	if n < 1 {
		n = 1
	}

	return n
}

// Description возвращает текстовое описание аппаратного обеспечения
func (i *Info) Description() string {
	return fmt.Sprintf("CPU: %d ядер (%d потоков), память: %.1f ГБ доступно из %.1f ГБ",
		i.CPUCores, i.CPUThreads,
		float64(i.MemoryAvailable)/(1<<30), float64(i.MemoryTotal)/(1<<30))
}
