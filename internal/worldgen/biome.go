package worldgen

// BiomeType — тип биома
type BiomeType int

// Биомы в порядке возрастания высоты/суровости
const (
	BiomeOcean BiomeType = iota
	BiomeBeach
	BiomeDesert
	BiomePlains
	BiomeForest
	BiomeTaiga
	BiomeMountain
	BiomeSnowland
)

// String возвращает читаемое имя биома
func (b BiomeType) String() string {
	switch b {
	case BiomeOcean:
		return "ocean"
	case BiomeBeach:
		return "beach"
	case BiomeDesert:
		return "desert"
	case BiomePlains:
		return "plains"
	case BiomeForest:
		return "forest"
	case BiomeTaiga:
		return "taiga"
	case BiomeMountain:
		return "mountain"
	case BiomeSnowland:
		return "snowland"
	}
	return "unknown"
}

// BiomeNoise объединяет карты высот, влажности и температуры
type BiomeNoise struct {
	heightMap      *NoiseMap
	moistureMap    *NoiseMap
	temperatureMap *NoiseMap
}

// NewBiomeNoise создает генератор шума биомов для заданного сида
func NewBiomeNoise(seed int64) *BiomeNoise {
	return &BiomeNoise{
		heightMap:      NewNoiseMap(seed, 0.01),
		moistureMap:    NewNoiseMap(seed+1, 0.005), // влажность плавнее высоты
		temperatureMap: NewNoiseMap(seed+2, 0.008),
	}
}

// BiomeData возвращает высоту, влажность и температуру в точке (все в [0,1])
func (bn *BiomeNoise) BiomeData(x, z float64) (height, moisture, temperature float64) {
	height = bn.heightMap.OctaveNormalized2D(x, z, 4)
	moisture = bn.moistureMap.OctaveNormalized2D(x, z, 2)
	temperature = bn.temperatureMap.OctaveNormalized2D(x, z, 3)
	return height, moisture, temperature
}

// CacheStats возвращает статистику кешей шума для диагностики
func (bn *BiomeNoise) CacheStats() map[string]interface{} {
	stats := make(map[string]interface{}, 3)
	for name, nm := range map[string]*NoiseMap{
		"height":      bn.heightMap,
		"moisture":    bn.moistureMap,
		"temperature": bn.temperatureMap,
	} {
		hits, misses, rate := nm.cache.Stats()
		stats[name] = map[string]interface{}{
			"hits":     hits,
			"misses":   misses,
			"hit_rate": rate,
		}
	}
	return stats
}

// ClearCaches очищает кеши всех карт шума
func (bn *BiomeNoise) ClearCaches() {
	bn.heightMap.cache.Clear()
	bn.moistureMap.cache.Clear()
	bn.temperatureMap.cache.Clear()
}

// BiomeTypeOf определяет биом по высоте, влажности и температуре
func BiomeTypeOf(height, moisture, temperature float64) BiomeType {
	if height < 0.3 {
		return BiomeOcean
	}
	if height < 0.4 {
		return BiomeBeach
	}
	if height > 0.75 {
		if temperature < 0.3 {
			return BiomeSnowland
		}
		return BiomeMountain
	}
	if temperature < 0.3 {
		return BiomeTaiga
	}
	if temperature > 0.7 && moisture < 0.3 {
		return BiomeDesert
	}
	if moisture > 0.6 {
		return BiomeForest
	}
	return BiomePlains
}
