package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Геометрия региона: 16×16 чанков на файл.
const (
	regionSpan       = 16
	chunksPerRegion  = regionSpan * regionSpan
	regionHeaderSize = 256
	indexEntrySize   = 16
	indexTableSize   = indexEntrySize * chunksPerRegion
)

var regionMagic = []byte("VREG")

// RegionFile - файл региона, содержащий до 256 чанков. Формат:
// заголовок (256 байт) + индексная таблица (16 байт × 256) + блобы чанков.
type RegionFile struct {
	filename string
	file     *os.File
	mutex    sync.RWMutex

	// Кеш индексной таблицы для быстрого доступа
	chunkIndex map[chunk.Pos]chunkIndexEntry
}

// Запись в индексной таблице. Нулевой размер означает, что чанк
// еще не сохранялся.
type chunkIndexEntry struct {
	X      int32
	Z      int32
	Offset uint32
	Size   uint32
}

// regionName возвращает имя файла региона.
func regionName(regionX, regionZ int) string {
	return fmt.Sprintf("vregion_%d_%d.dat", regionX, regionZ)
}

// RegionOf возвращает координаты региона, которому принадлежит чанк.
func RegionOf(pos chunk.Pos) (int, int) {
	rx := pos.X / regionSpan
	if pos.X < 0 && pos.X%regionSpan != 0 {
		rx--
	}
	rz := pos.Z / regionSpan
	if pos.Z < 0 && pos.Z%regionSpan != 0 {
		rz--
	}
	return rx, rz
}

// NewRegionFile открывает существующий файл региона или создает новый.
func NewRegionFile(path string, regionX, regionZ int) (*RegionFile, error) {
	fullPath := filepath.Join(path, regionName(regionX, regionZ))

	exists := false
	if _, err := os.Stat(fullPath); err == nil {
		exists = true
	}

	file, err := os.OpenFile(fullPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	region := &RegionFile{
		filename:   fullPath,
		file:       file,
		chunkIndex: make(map[chunk.Pos]chunkIndexEntry),
	}

	if !exists {
		if err := region.initializeFile(); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		if err := region.loadIndexTable(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return region, nil
}

// Инициализация нового файла: заголовок и пустая индексная таблица.
func (r *RegionFile) initializeFile() error {
	header := make([]byte, regionHeaderSize)

	copy(header[0:4], regionMagic)
	binary.LittleEndian.PutUint32(header[4:8], 1) // версия формата
	binary.LittleEndian.PutUint32(header[8:12], chunksPerRegion)
	binary.LittleEndian.PutUint64(header[12:20], uint64(time.Now().Unix()))

	if _, err := r.file.Write(header); err != nil {
		return err
	}

	indexTable := make([]byte, indexTableSize)
	if _, err := r.file.Write(indexTable); err != nil {
		return err
	}

	return r.file.Sync()
}

// Загрузка индексной таблицы в память.
func (r *RegionFile) loadIndexTable() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	header := make([]byte, regionHeaderSize)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return fmt.Errorf("read region header: %w", err)
	}
	if string(header[0:4]) != string(regionMagic) {
		return fmt.Errorf("%s: bad region magic %q", r.filename, header[0:4])
	}

	indexTable := make([]byte, indexTableSize)
	if _, err := r.file.ReadAt(indexTable, regionHeaderSize); err != nil {
		return fmt.Errorf("read region index: %w", err)
	}

	for i := 0; i < chunksPerRegion; i++ {
		off := i * indexEntrySize
		entry := chunkIndexEntry{
			X:      int32(binary.LittleEndian.Uint32(indexTable[off : off+4])),
			Z:      int32(binary.LittleEndian.Uint32(indexTable[off+4 : off+8])),
			Offset: binary.LittleEndian.Uint32(indexTable[off+8 : off+12]),
			Size:   binary.LittleEndian.Uint32(indexTable[off+12 : off+16]),
		}

		if entry.Size > 0 {
			r.chunkIndex[chunk.Pos{X: int(entry.X), Z: int(entry.Z)}] = entry
		}
	}

	return nil
}

// HasChunk проверяет наличие чанка в регионе.
func (r *RegionFile) HasChunk(pos chunk.Pos) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entry, ok := r.chunkIndex[pos]
	return ok && entry.Size > 0
}

// GetChunk читает и десериализует чанк из файла.
func (r *RegionFile) GetChunk(pos chunk.Pos) (*chunk.Chunk, error) {
	r.mutex.RLock()
	entry, exists := r.chunkIndex[pos]
	r.mutex.RUnlock()

	if !exists || entry.Size == 0 {
		return nil, ErrChunkNotFound{X: pos.X, Z: pos.Z}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	data := make([]byte, entry.Size)
	if _, err := r.file.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", pos.Key(), err)
	}

	return deserializeChunk(pos, data)
}

// SaveChunk сериализует и записывает чанк. Если новый блоб помещается
// на старое место, пишем поверх, иначе дописываем в конец файла.
func (r *RegionFile) SaveChunk(c *chunk.Chunk) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	data, err := serializeChunk(c)
	if err != nil {
		return err
	}

	var offset uint32
	entry, exists := r.chunkIndex[c.Pos]

	if exists && entry.Offset > 0 && uint32(len(data)) <= entry.Size {
		offset = entry.Offset
	} else {
		fileInfo, err := r.file.Stat()
		if err != nil {
			return err
		}
		offset = uint32(fileInfo.Size())
	}

	if _, err := r.file.WriteAt(data, int64(offset)); err != nil {
		return err
	}

	indexEntry := chunkIndexEntry{
		X:      int32(c.Pos.X),
		Z:      int32(c.Pos.Z),
		Offset: offset,
		Size:   uint32(len(data)),
	}
	r.chunkIndex[c.Pos] = indexEntry

	idxOffset := findIndexOffset(c.Pos)
	if idxOffset >= 0 {
		indexBytes := make([]byte, indexEntrySize)
		binary.LittleEndian.PutUint32(indexBytes[0:4], uint32(indexEntry.X))
		binary.LittleEndian.PutUint32(indexBytes[4:8], uint32(indexEntry.Z))
		binary.LittleEndian.PutUint32(indexBytes[8:12], indexEntry.Offset)
		binary.LittleEndian.PutUint32(indexBytes[12:16], indexEntry.Size)

		if _, err := r.file.WriteAt(indexBytes, int64(regionHeaderSize+idxOffset)); err != nil {
			return err
		}
	}

	return nil
}

// Sync сбрасывает содержимое файла региона на диск.
func (r *RegionFile) Sync() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.file.Sync()
}

// Close закрывает файл региона.
func (r *RegionFile) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.file.Sync(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ChunkCount возвращает количество сохраненных чанков в регионе.
func (r *RegionFile) ChunkCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.chunkIndex)
}

// Positions возвращает координаты всех сохраненных чанков региона.
func (r *RegionFile) Positions() []chunk.Pos {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]chunk.Pos, 0, len(r.chunkIndex))
	for pos := range r.chunkIndex {
		out = append(out, pos)
	}
	return out
}

// Позиция записи чанка в индексной таблице. Отрицательные координаты
// приводятся к локальным по модулю размера региона.
func findIndexOffset(pos chunk.Pos) int {
	localX := pos.X % regionSpan
	if localX < 0 {
		localX += regionSpan
	}

	localZ := pos.Z % regionSpan
	if localZ < 0 {
		localZ += regionSpan
	}

	idx := localZ*regionSpan + localX
	if idx < 0 || idx >= chunksPerRegion {
		return -1
	}

	return idx * indexEntrySize
}
