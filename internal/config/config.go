// Package config описывает настройки движка, загружаемые из YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config — настройки мира и планировщиков. Нулевые значения полей
// заменяются значениями по умолчанию при загрузке.
type Config struct {
	// Мир
	WorldName   string `yaml:"worldName"`
	WorldSeed   int64  `yaml:"worldSeed"`
	StoragePath string `yaml:"storagePath"`

	// Окно резидентных чанков
	ViewingDistanceX int `yaml:"viewingDistanceX"`
	ViewingDistanceZ int `yaml:"viewingDistanceZ"`

	// Частота перецентровок окна; из нее выводится минимальный
	// интервал между перецентровками
	ChunkRequestsPerSecond int `yaml:"chunkRequestsPerSecond"`

	// Перестройка геометрии
	MeshWorkers       int `yaml:"meshWorkers"`
	RebuildQueueSize  int `yaml:"rebuildQueueSize"`
	UpdateStatsWindow int `yaml:"updateStatsWindow"`

	// Физика
	PhysicsChunksPerFrame int `yaml:"physicsChunksPerFrame"`

	// Длительность игровых суток в секундах реального времени
	SecondsPerDay float64 `yaml:"secondsPerDay"`

	// Частота кадров симуляции
	TicksPerSecond int `yaml:"ticksPerSecond"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		WorldName:              "world",
		WorldSeed:              0,
		StoragePath:            "./data",
		ViewingDistanceX:       16,
		ViewingDistanceZ:       16,
		ChunkRequestsPerSecond: 1,
		MeshWorkers:            2,
		RebuildQueueSize:       64,
		UpdateStatsWindow:      32,
		PhysicsChunksPerFrame:  16,
		SecondsPerDay:          600,
		TicksPerSecond:         30,
	}
}

// Load читает конфигурацию из YAML-файла поверх значений по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию. Ошибка здесь фатальна: с нулевой
// частотой запросов интервал перецентровки не вычислим.
func (c *Config) Validate() error {
	if c.ChunkRequestsPerSecond <= 0 {
		return fmt.Errorf("chunkRequestsPerSecond must be positive, got %d", c.ChunkRequestsPerSecond)
	}
	if c.ViewingDistanceX <= 0 || c.ViewingDistanceZ <= 0 {
		return fmt.Errorf("viewing distance must be positive, got %dx%d", c.ViewingDistanceX, c.ViewingDistanceZ)
	}
	if c.MeshWorkers <= 0 {
		return fmt.Errorf("meshWorkers must be positive, got %d", c.MeshWorkers)
	}
	if c.PhysicsChunksPerFrame <= 0 {
		return fmt.Errorf("physicsChunksPerFrame must be positive, got %d", c.PhysicsChunksPerFrame)
	}
	if c.SecondsPerDay <= 0 {
		return fmt.Errorf("secondsPerDay must be positive, got %v", c.SecondsPerDay)
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticksPerSecond must be positive, got %d", c.TicksPerSecond)
	}
	return nil
}

// UpdateGap возвращает минимальный интервал между перецентровками окна.
func (c *Config) UpdateGap() time.Duration {
	return time.Second / time.Duration(c.ChunkRequestsPerSecond)
}

// TickInterval возвращает период одного кадра симуляции.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TicksPerSecond)
}

// Save записывает конфигурацию в YAML-файл.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
