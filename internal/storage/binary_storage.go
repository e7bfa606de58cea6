package storage

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// BinaryStorage реализует WorldStorage поверх региональных файлов.
// Чанки хранятся целиком в сжатом виде, метаданные мира - в JSON,
// состояние игроков - в gob.
type BinaryStorage struct {
	basePath  string
	worldName string
	worldSeed int64

	regionManager *RegionManager

	playersPath string

	infoMutex sync.Mutex
	closeOnce sync.Once
}

// NewBinaryStorage создает хранилище в указанной директории. Если мир
// уже сохранялся, существующие метаданные имеют приоритет над
// переданными name и seed.
func NewBinaryStorage(basePath string, worldName string, seed int64) (*BinaryStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	regionsPath := filepath.Join(basePath, "regions")
	if err := os.MkdirAll(regionsPath, 0755); err != nil {
		return nil, fmt.Errorf("create regions dir: %w", err)
	}

	playersPath := filepath.Join(basePath, "players")
	if err := os.MkdirAll(playersPath, 0755); err != nil {
		return nil, fmt.Errorf("create players dir: %w", err)
	}

	s := &BinaryStorage{
		basePath:      basePath,
		worldName:     worldName,
		worldSeed:     seed,
		regionManager: NewRegionManager(regionsPath),
		playersPath:   playersPath,
	}

	// Создаем метаданные мира, если их еще нет
	if _, err := s.LoadWorldInfo(context.Background()); err != nil {
		now := time.Now()
		info := &WorldInfo{
			Name:      worldName,
			Seed:      seed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.SaveWorldInfo(context.Background(), info); err != nil {
			s.regionManager.Close()
			return nil, err
		}
	}

	return s, nil
}

// LoadChunk загружает чанк из регионального хранилища.
func (s *BinaryStorage) LoadChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.regionManager.LoadChunk(pos)
}

// SaveChunk сохраняет чанк целиком.
func (s *BinaryStorage) SaveChunk(ctx context.Context, c *chunk.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.regionManager.SaveChunk(c)
}

// HasChunk проверяет, сохранялся ли чанк.
func (s *BinaryStorage) HasChunk(ctx context.Context, pos chunk.Pos) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.regionManager.HasChunk(pos)
}

// SaveWorldInfo сохраняет метаданные мира в JSON-файл.
func (s *BinaryStorage) SaveWorldInfo(ctx context.Context, info *WorldInfo) error {
	s.infoMutex.Lock()
	defer s.infoMutex.Unlock()

	info.UpdatedAt = time.Now()
	infoPath := filepath.Join(s.basePath, "world_info.json")
	return saveJSONFile(infoPath, info)
}

// LoadWorldInfo загружает метаданные мира.
func (s *BinaryStorage) LoadWorldInfo(ctx context.Context) (*WorldInfo, error) {
	s.infoMutex.Lock()
	defer s.infoMutex.Unlock()

	infoPath := filepath.Join(s.basePath, "world_info.json")
	if _, err := os.Stat(infoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("world info not found in %s", s.basePath)
	}

	var info WorldInfo
	if err := loadJSONFile(infoPath, &info); err != nil {
		return nil, fmt.Errorf("load world info: %w", err)
	}
	return &info, nil
}

// SavePlayerState сохраняет состояние игрока в бинарном (gob) виде.
func (s *BinaryStorage) SavePlayerState(ctx context.Context, state *PlayerState) error {
	if state == nil {
		return nil
	}
	path := filepath.Join(s.playersPath, fmt.Sprintf("player_%s.dat", state.PlayerID))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(state)
}

// LoadPlayerState загружает состояние игрока; ошибка, если файла нет.
func (s *BinaryStorage) LoadPlayerState(ctx context.Context, playerID string) (*PlayerState, error) {
	path := filepath.Join(s.playersPath, fmt.Sprintf("player_%s.dat", playerID))
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var ps PlayerState
	if err := dec.Decode(&ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// Flush сбрасывает все отложенные записи регионов на диск.
func (s *BinaryStorage) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.regionManager.Flush()
}

// Close закрывает хранилище и освобождает ресурсы.
func (s *BinaryStorage) Close() error {
	var retErr error
	s.closeOnce.Do(func() {
		retErr = s.regionManager.Close()
	})
	return retErr
}

// saveJSONFile атомарно пишет объект в JSON-файл.
func saveJSONFile(path string, data interface{}) error {
	fileData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, fileData, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// loadJSONFile читает объект из JSON-файла.
func loadJSONFile(path string, data interface{}) error {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(fileData, data)
}
