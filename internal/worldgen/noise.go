// Package worldgen — генерация рельефа: шум Перлина с октавами,
// компактные кеши значений и детерминированный генератор чанков.
package worldgen

import (
	"math"
	"sync"

	"github.com/aquilax/go-perlin"
)

// CompactNoise — компактное целочисленное представление значения шума.
// Хранение int8 вместо float64 сокращает память кеша в восемь раз
// при достаточной для генерации точности.
type CompactNoise int8

const (
	noiseResolution = 255
	minNoiseValue   = -1.0
	maxNoiseValue   = 1.0
)

// floatToCompact сжимает значение шума [-1,1] в int8
func floatToCompact(value float64) CompactNoise {
	normalized := (value - minNoiseValue) / (maxNoiseValue - minNoiseValue)
	scaled := normalized * noiseResolution
	return CompactNoise(math.Min(127, math.Max(-127, math.Round(scaled)-128)))
}

// compactToFloat восстанавливает значение шума из int8
func compactToFloat(value CompactNoise) float64 {
	scaled := float64(int8(value)) + 127.0
	return scaled/noiseResolution*(maxNoiseValue-minNoiseValue) + minNoiseValue
}

// cacheKey упаковывает целочисленные координаты в один 64-битный ключ
func cacheKey(x, y float64) int64 {
	ix := int32(math.Floor(x))
	iy := int32(math.Floor(y))
	return (int64(ix) << 32) | (int64(iy) & 0xFFFFFFFF)
}

// NoiseCache — ограниченный кеш значений шума с целочисленными ключами.
// При переполнении вытесняется самый старый ключ.
type NoiseCache struct {
	cache    map[int64]CompactNoise
	keys     []int64
	capacity int
	mu       sync.RWMutex
	hits     int
	misses   int
}

// NewNoiseCache создает кеш заданной емкости
func NewNoiseCache(capacity int) *NoiseCache {
	return &NoiseCache{
		cache:    make(map[int64]CompactNoise),
		keys:     make([]int64, 0, capacity),
		capacity: capacity,
	}
}

// Get возвращает значение из кеша и флаг попадания
func (nc *NoiseCache) Get(x, y float64) (float64, bool) {
	key := cacheKey(x, y)

	nc.mu.RLock()
	v, ok := nc.cache[key]
	nc.mu.RUnlock()

	nc.mu.Lock()
	if ok {
		nc.hits++
	} else {
		nc.misses++
	}
	nc.mu.Unlock()

	if !ok {
		return 0, false
	}
	return compactToFloat(v), true
}

// Put сохраняет значение в кеш
func (nc *NoiseCache) Put(x, y float64, value float64) {
	key := cacheKey(x, y)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	if _, exists := nc.cache[key]; !exists {
		if len(nc.cache) >= nc.capacity && len(nc.keys) > 0 {
			delete(nc.cache, nc.keys[0])
			nc.keys = nc.keys[1:]
		}
		nc.keys = append(nc.keys, key)
	}
	nc.cache[key] = floatToCompact(value)
}

// Stats возвращает попадания, промахи и долю попаданий
func (nc *NoiseCache) Stats() (hits, misses int, hitRate float64) {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	total := nc.hits + nc.misses
	rate := 0.0
	if total > 0 {
		rate = float64(nc.hits) / float64(total)
	}
	return nc.hits, nc.misses, rate
}

// Clear очищает кеш и сбрасывает счетчики
func (nc *NoiseCache) Clear() {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.cache = make(map[int64]CompactNoise)
	nc.keys = nc.keys[:0]
	nc.hits = 0
	nc.misses = 0
}

// NoiseMap — карта шума Перлина с суммированием октав
type NoiseMap struct {
	perlin      *perlin.Perlin
	scale       float64 // чем меньше, тем плавнее ландшафт
	persistence float64 // множитель амплитуды между октавами
	lacunarity  float64 // множитель частоты между октавами
	cache       *NoiseCache
}

// NewNoiseMap создает карту шума для заданного сида и масштаба
func NewNoiseMap(seed int64, scale float64) *NoiseMap {
	return &NoiseMap{
		perlin:      perlin.NewPerlin(2.0, 2.0, 3, seed),
		scale:       scale,
		persistence: 0.5,
		lacunarity:  2.0,
		cache:       NewNoiseCache(10000),
	}
}

// OctaveNormalized2D возвращает значение шума с октавами в диапазоне [0,1]
func (nm *NoiseMap) OctaveNormalized2D(x, y float64, octaves int) float64 {
	if v, ok := nm.cache.Get(x, y); ok {
		return v
	}

	scaledX := x * nm.scale
	scaledY := y * nm.scale

	amplitude := 1.0
	frequency := 1.0
	total := 0.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += nm.perlin.Noise2D(scaledX*frequency, scaledY*frequency) * amplitude
		maxValue += amplitude
		amplitude *= nm.persistence
		frequency *= nm.lacunarity
	}
	value := (total/maxValue - minNoiseValue) / (maxNoiseValue - minNoiseValue)

	nm.cache.Put(x, y, value)

	return value
}
