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

// Package profile предоставляет профилирование операций симулятора
package profile

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OperationStats содержит статистику по операции
type OperationStats struct {
	Count        int64
	TotalTime    time.Duration
	MinTime      time.Duration
	MaxTime      time.Duration
	AvgTime      time.Duration
	LastCallTime time.Time
}

// Profiler предоставляет средства для профилирования производительности
type Profiler struct {
	// Статистика по операциям
	operationStats map[string]*OperationStats

	// Текущие операции (имя -> время начала)
	currentOperations map[string]time.Time

	// Мьютекс для защиты параллельного доступа
	mutex sync.Mutex

	// Включен ли профайлер
	enabled bool
}

// NewProfiler создает новый профайлер
func NewProfiler() *Profiler {
	return &Profiler{
		operationStats:    make(map[string]*OperationStats),
		currentOperations: make(map[string]time.Time),
		enabled:           true,
	}
}

// SetEnabled включает или выключает профайлер
func (p *Profiler) SetEnabled(enabled bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.enabled = enabled
}

// StartOperation отмечает начало операции
func (p *Profiler) StartOperation(operationName string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.enabled {
		return
	}

	p.currentOperations[operationName] = time.Now()
}

// EndOperation отмечает конец операции и обновляет статистику
func (p *Profiler) EndOperation(operationName string) time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.enabled {
		return 0
	}

	startTime, ok := p.currentOperations[operationName]
	if !ok {
		return 0
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)
	delete(p.currentOperations, operationName)

	stats, ok := p.operationStats[operationName]
	if !ok {
		stats = &OperationStats{
			MinTime: duration,
			MaxTime: duration,
		}
		p.operationStats[operationName] = stats
	}

	stats.Count++
	stats.TotalTime += duration

	if duration < stats.MinTime {
		stats.MinTime = duration
	}
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}

	stats.AvgTime = time.Duration(stats.TotalTime.Nanoseconds() / stats.Count)
	stats.LastCallTime = endTime

	return duration
}

// GetOperationStats возвращает копию статистики по конкретной операции
func (p *Profiler) GetOperationStats(operationName string) (OperationStats, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats, ok := p.operationStats[operationName]
	if !ok {
		return OperationStats{}, false
	}

	return *stats, true
}

// OperationNames возвращает имена всех профилированных операций
// в отсортированном порядке
func (p *Profiler) OperationNames() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	names := make([]string, 0, len(p.operationStats))
	for name := range p.operationStats {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Reset очищает всю собранную статистику
func (p *Profiler) Reset() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.operationStats = make(map[string]*OperationStats)
	p.currentOperations = make(map[string]time.Time)
}

// Report выводит собранную статистику через структурированный логгер
func (p *Profiler) Report(logger *zap.SugaredLogger) {
	for _, name := range p.OperationNames() {
		stats, ok := p.GetOperationStats(name)
		if !ok {
			continue
		}
		logger.Infow("статистика операции",
			"op", name,
			"count", stats.Count,
			"total", stats.TotalTime,
			"min", stats.MinTime,
			"max", stats.MaxTime,
			"avg", stats.AvgTime,
		)
	}
}
