package main

import (
	"fmt"
	"os"

	"github.com/naoina/toml"
)

// Config содержит настройки инструмента, загружаемые из TOML-файла.
// Флаги командной строки имеют приоритет над файлом.
type Config struct {
	// MaxQubits ограничивает ширину симулируемых схем.
	// Нулевое значение означает автоматический выбор по доступной памяти.
	MaxQubits int

	// Epsilon порог значимости вероятностей
	Epsilon float64

	// Verbosity уровень логирования: debug, info, warn или error
	Verbosity string
}

// defaultConfig возвращает конфигурацию по умолчанию
func defaultConfig() *Config {
	return &Config{
		MaxQubits: 0,
		Epsilon:   1e-9,
		Verbosity: "info",
	}
}

// loadConfig читает конфигурацию из TOML-файла поверх значений по умолчанию
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}

	return cfg, nil
}
