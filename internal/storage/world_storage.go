package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// WorldStorage - интерфейс хранилища мира. Реализации должны быть
// потокобезопасными: движок сохраняет чанки из фоновых горутин.
type WorldStorage interface {
	// LoadChunk загружает чанк. Если чанк никогда не сохранялся,
	// возвращает ErrChunkNotFound.
	LoadChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error)

	// SaveChunk сохраняет чанк целиком.
	SaveChunk(ctx context.Context, c *chunk.Chunk) error

	// HasChunk проверяет наличие чанка без его загрузки.
	HasChunk(ctx context.Context, pos chunk.Pos) (bool, error)

	// LoadWorldInfo / SaveWorldInfo - метаданные мира (сид, время суток).
	LoadWorldInfo(ctx context.Context) (*WorldInfo, error)
	SaveWorldInfo(ctx context.Context, info *WorldInfo) error

	// LoadPlayerState / SavePlayerState - позиция и ориентация игрока.
	LoadPlayerState(ctx context.Context, playerID string) (*PlayerState, error)
	SavePlayerState(ctx context.Context, state *PlayerState) error

	// Flush сбрасывает все отложенные записи на диск.
	Flush(ctx context.Context) error

	// Close закрывает хранилище, предварительно вызывая Flush.
	Close() error
}

// WorldInfo - метаданные мира, сохраняемые между сессиями.
type WorldInfo struct {
	Name      string    `json:"name"`
	Seed      int64     `json:"seed"`
	Time      float64   `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerState - сохранённое состояние игрока.
type PlayerState struct {
	PlayerID string     `json:"player_id"`
	Name     string     `json:"name"`
	Position mgl32.Vec3 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Pitch    float32    `json:"pitch"`
}

// ErrChunkNotFound возвращается, когда чанк отсутствует в хранилище.
// Вызывающий код в этом случае генерирует чанк заново.
type ErrChunkNotFound struct {
	X, Z int
}

func (e ErrChunkNotFound) Error() string {
	return fmt.Sprintf("chunk %d:%d not found in storage", e.X, e.Z)
}

// IsChunkNotFound проверяет, является ли ошибка отсутствием чанка.
func IsChunkNotFound(err error) bool {
	_, ok := err.(ErrChunkNotFound)
	return ok
}
