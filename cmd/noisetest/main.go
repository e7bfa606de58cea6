package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/annelo/go-voxel-engine/internal/worldgen"
)

const (
	width  = 40
	height = 20
)

var seed = flag.Int64("seed", 0, "Сид генерации (0 = случайный)")

func main() {
	flag.Parse()
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	fmt.Printf("Seed: %d\n", *seed)

	noise := worldgen.NewBiomeNoise(*seed)

	// Визуализируем карту высот
	fmt.Println("\nКарта высот:")
	visualizeHeightMap(noise)

	// Визуализируем карту биомов
	fmt.Println("\nКарта биомов:")
	visualizeBiomeMap(noise)
}

// visualizeHeightMap визуализирует карту высот шума Перлина
func visualizeHeightMap(noise *worldgen.BiomeNoise) {
	// Символы для различных высот от низкой к высокой
	chars := []rune{'~', '.', '-', '=', '#', '^', '*', '@'}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h, _, _ := noise.BiomeData(float64(x)*5, float64(y)*5)

			idx := int(h * float64(len(chars)-1))
			if idx >= len(chars) {
				idx = len(chars) - 1
			}

			fmt.Print(string(chars[idx]))
		}
		fmt.Println()
	}
}

// visualizeBiomeMap визуализирует карту биомов
func visualizeBiomeMap(noise *worldgen.BiomeNoise) {
	// Символы для различных биомов
	biomeChars := map[worldgen.BiomeType]rune{
		worldgen.BiomeOcean:    '~',
		worldgen.BiomeBeach:    ',',
		worldgen.BiomeDesert:   '.',
		worldgen.BiomePlains:   '_',
		worldgen.BiomeForest:   'f',
		worldgen.BiomeTaiga:    't',
		worldgen.BiomeMountain: '^',
		worldgen.BiomeSnowland: '*',
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h, moisture, temperature := noise.BiomeData(float64(x)*5, float64(y)*5)
			biome := worldgen.BiomeTypeOf(h, moisture, temperature)
			fmt.Print(string(biomeChars[biome]))
		}
		fmt.Println()
	}
}
