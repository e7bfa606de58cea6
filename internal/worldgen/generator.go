package worldgen

import (
	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Уровни генерации рельефа
const (
	// SeaLevel — уровень воды в блоках
	SeaLevel = 40

	// maxTerrainHeight — максимальная высота поверхности в блоках
	maxTerrainHeight = 100
)

// Generator — детерминированный генератор чанков: для одной пары
// (сид, координата) всегда возвращается один и тот же результат.
type Generator struct {
	seed  int64
	noise *BiomeNoise
}

// NewGenerator создает генератор чанков для заданного сида
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:  seed,
		noise: NewBiomeNoise(seed),
	}
}

// Seed возвращает сид генератора
func (g *Generator) Seed() int64 { return g.seed }

// Noise возвращает генератор шума биомов (используется инструментами)
func (g *Generator) Noise() *BiomeNoise { return g.noise }

// BiomeAt возвращает биом в мировой точке
func (g *Generator) BiomeAt(worldX, worldZ float64) BiomeType {
	return BiomeTypeOf(g.noise.BiomeData(worldX, worldZ))
}

// Generate создает и заполняет чанк рельефом
func (g *Generator) Generate(pos chunk.Pos) *chunk.Chunk {
	c := chunk.New(pos)

	for z := 0; z < chunk.SizeZ; z++ {
		for x := 0; x < chunk.SizeX; x++ {
			worldX := float64(pos.X*chunk.SizeX + x)
			worldZ := float64(pos.Z*chunk.SizeZ + z)

			height, moisture, temperature := g.noise.BiomeData(worldX, worldZ)
			g.fillColumn(c, x, z, height, moisture, temperature)
		}
	}
	return c
}

// fillColumn заполняет один столб блоков чанка по данным биома
func (g *Generator) fillColumn(c *chunk.Chunk, x, z int, height, moisture, temperature float64) {
	surface := int(height * maxTerrainHeight)
	if surface < 1 {
		surface = 1
	}
	biome := BiomeTypeOf(height, moisture, temperature)

	for y := 0; y < surface && y < chunk.SizeY; y++ {
		switch {
		case y == surface-1:
			c.SetBlock(x, y, z, surfaceBlock(biome, height))
		case y > surface-4:
			c.SetBlock(x, y, z, block.Dirt)
		default:
			c.SetBlock(x, y, z, block.Stone)
		}
	}

	// Заполняем океаны и пляжные низины водой до уровня моря
	for y := surface; y < SeaLevel && y < chunk.SizeY; y++ {
		c.SetBlock(x, y, z, block.Water)
	}

	// Растительность равнин и лесов поверх травы
	if biome == BiomePlains || biome == BiomeForest {
		if surface >= SeaLevel && surface < chunk.SizeY {
			if vegetationAt(g.seed, c.Pos, x, z) {
				c.SetBlock(x, surface, z, block.TallGrass)
			}
		}
	}
}

// surfaceBlock выбирает верхний блок столба по биому
func surfaceBlock(biome BiomeType, height float64) block.Type {
	switch biome {
	case BiomeOcean:
		return block.Sand
	case BiomeBeach, BiomeDesert:
		return block.Sand
	case BiomeTaiga:
		if height > 0.7 {
			return block.Snow
		}
		return block.Grass
	case BiomeMountain:
		if height > 0.85 {
			return block.Snow
		}
		return block.Stone
	case BiomeSnowland:
		return block.Snow
	default:
		return block.Grass
	}
}

// vegetationAt — детерминированный "бросок монеты" для растительности.
// Обычный rand здесь не годится: повторная генерация того же чанка
// обязана дать тот же результат.
func vegetationAt(seed int64, pos chunk.Pos, x, z int) bool {
	h := uint64(seed) * 0x9E3779B97F4A7C15
	h ^= uint64(int64(pos.X*chunk.SizeX+x)) * 0xBF58476D1CE4E5B9
	h ^= uint64(int64(pos.Z*chunk.SizeZ+z)) * 0x94D049BB133111EB
	h ^= h >> 31
	return h%10 == 0 // ~10% столбов
}
