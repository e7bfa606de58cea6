package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/nsf/termbox-go"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/config"
	"github.com/annelo/go-voxel-engine/internal/engine"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

var (
	worldPath = flag.String("world", "", "Путь для хранения данных мира (пусто = без хранилища)")
	worldName = flag.String("name", "viz", "Название игрового мира")
	seed      = flag.Int64("seed", 0, "Сид для генерации мира (0 = случайный)")
	debugMode = flag.Bool("debug", false, "Режим отладки (показать подробную информацию)")
)

// Символы для разных типов блоков
var blockSymbols = map[block.Type]rune{
	block.Air:       ' ',
	block.Grass:     '_',
	block.Dirt:      '.',
	block.Stone:     '#',
	block.Water:     '~',
	block.Sand:      ',',
	block.Wood:      '|',
	block.Leaves:    '@',
	block.Snow:      '*',
	block.TallGrass: '"',
	block.Flower:    'f',
	block.Lava:      '%',
}

// Цвета для разных типов блоков
var blockColors = map[block.Type]termbox.Attribute{
	block.Air:       termbox.ColorDefault,
	block.Grass:     termbox.ColorGreen,
	block.Dirt:      termbox.ColorYellow,
	block.Stone:     termbox.ColorWhite,
	block.Water:     termbox.ColorBlue,
	block.Sand:      termbox.ColorYellow,
	block.Wood:      termbox.ColorRed,
	block.Leaves:    termbox.ColorGreen,
	block.Snow:      termbox.ColorWhite,
	block.TallGrass: termbox.ColorGreen,
	block.Flower:    termbox.ColorMagenta,
	block.Lava:      termbox.ColorRed,
}

func main() {
	flag.Parse()
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	cfg := config.Default()
	cfg.WorldName = *worldName
	cfg.WorldSeed = *seed
	// Быстрые перецентровки: окно должно поспевать за курсором
	cfg.ChunkRequestsPerSecond = 20

	var store storage.WorldStorage
	if *worldPath != "" {
		binStore, err := storage.NewBinaryStorage(*worldPath, cfg.WorldName, cfg.WorldSeed)
		if err != nil {
			log.Fatalf("Не удалось открыть хранилище: %v", err)
		}
		store = binStore
	}

	world, err := engine.NewWorld(cfg, nil, store, nil, nil, nil)
	if err != nil {
		log.Fatalf("Не удалось создать мир: %v", err)
	}

	if err := termbox.Init(); err != nil {
		log.Fatalf("termbox init error: %v", err)
	}
	defer termbox.Close()

	// События клавиатуры читаем в отдельной горутине, мир тикаем только
	// из главной
	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ctx := context.Background()
	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			world.Update(ctx, now.Sub(last))
			last = now
			draw(world)
		case ev := <-events:
			if !handleEvent(world, ev) {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				world.Stop(stopCtx)
				cancel()
				return
			}
			draw(world)
		}
	}
}

// handleEvent обрабатывает ввод; false — пора выходить
func handleEvent(world *engine.World, ev termbox.Event) bool {
	if ev.Type != termbox.EventKey {
		return true
	}

	p := world.Player()
	pos := p.Position()
	step := float32(1)

	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return false
	case termbox.KeyArrowLeft:
		p.Move(mgl32.Vec3{pos.X() - step, pos.Y(), pos.Z()})
	case termbox.KeyArrowRight:
		p.Move(mgl32.Vec3{pos.X() + step, pos.Y(), pos.Z()})
	case termbox.KeyArrowUp:
		p.Move(mgl32.Vec3{pos.X(), pos.Y(), pos.Z() - step})
	case termbox.KeyArrowDown:
		p.Move(mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + step})
	default:
		switch ev.Ch {
		case 'q':
			return false
		case 'a':
			p.Move(mgl32.Vec3{pos.X() - chunk.SizeX, pos.Y(), pos.Z()})
		case 'd':
			p.Move(mgl32.Vec3{pos.X() + chunk.SizeX, pos.Y(), pos.Z()})
		case 'w':
			p.Move(mgl32.Vec3{pos.X(), pos.Y(), pos.Z() - chunk.SizeZ})
		case 's':
			p.Move(mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + chunk.SizeZ})
		case 't':
			// Телепорт в случайную точку: окно чанков сбрасывается
			p.Reset(mgl32.Vec3{
				float32(rand.Intn(4096) - 2048),
				pos.Y(),
				float32(rand.Intn(4096) - 2048),
			})
		}
	}
	return true
}

// draw рисует карту верхних блоков вокруг игрока
func draw(world *engine.World) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, height := termbox.Size()

	p := world.Player()
	pos := p.Position()
	px, pz := int(pos.X()), int(pos.Z())

	for py := 2; py < height; py++ {
		for sx := 0; sx < width; sx++ {
			wx := px + sx - width/2
			wz := pz + py - height/2

			bt := surfaceAt(world, wx, wz)
			termbox.SetCell(sx, py, blockSymbols[bt], blockColors[bt], termbox.ColorBlack)
		}
	}

	// Игрок в центре экрана
	termbox.SetCell(width/2, height/2, '@', termbox.ColorYellow|termbox.AttrBold, termbox.ColorBlack)

	header := fmt.Sprintf("Pos=(%d,%d)  Chunk=%s  Biome=%s  Day %d  Daylight %.2f",
		px, pz, p.ChunkPos().Key(),
		world.Generator().BiomeAt(float64(px), float64(pz)),
		world.Day(), world.Daylight())
	drawLine(0, header, termbox.ColorYellow|termbox.AttrBold)

	if *debugMode {
		drawLine(1, world.String(), termbox.ColorWhite)
	} else {
		drawLine(1, "стрелки/wasd — движение, t — телепорт, q — выход", termbox.ColorWhite)
	}

	termbox.Flush()
}

func drawLine(y int, text string, fg termbox.Attribute) {
	width, _ := termbox.Size()
	i := 0
	for _, r := range text {
		if i >= width {
			break
		}
		termbox.SetCell(i, y, r, fg, termbox.ColorBlack)
		i++
	}
}

// surfaceAt возвращает верхний блок столбца из резидентного чанка либо
// пустоту, если чанк еще не загружен
func surfaceAt(world *engine.World, wx, wz int) block.Type {
	pos := chunk.Pos{X: floorDiv(wx, chunk.SizeX), Z: floorDiv(wz, chunk.SizeZ)}
	c := world.Cache().Get(pos)
	if c == nil {
		return block.Air
	}

	lx := wx - pos.X*chunk.SizeX
	lz := wz - pos.Z*chunk.SizeZ
	for y := chunk.SizeY - 1; y >= 0; y-- {
		if bt := c.Block(lx, y, lz); !block.IsAir(bt) {
			return bt
		}
	}
	return block.Air
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
