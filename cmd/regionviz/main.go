package main

import (
	"flag"
	"fmt"
	"log"

	termbox "github.com/nsf/termbox-go"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

var (
	worldPath = flag.String("path", "/tmp/world/regions", "Путь до директории с region-файлами")
	regionX   = flag.Int("x", -9999, "Координата региона X (если не задана, вычисляется из startX/startZ)")
	regionZ   = flag.Int("z", -9999, "Координата региона Z")
	zoom      = flag.Int("zoom", 1, "Коэффициент масштабирования блока -> символов (1-4)")
	startX    = flag.Int("startX", 0, "Начальная мировая координата X камеры")
	startZ    = flag.Int("startZ", 0, "Начальная мировая координата Z камеры")
)

func main() {
	flag.Parse()

	// Инициализируем termbox
	if err := termbox.Init(); err != nil {
		log.Fatalf("termbox init error: %v", err)
	}
	defer termbox.Close()

	// Если регион не задан явно, вычисляем его из стартовых координат
	if *regionX == -9999 || *regionZ == -9999 {
		pos := chunkOfWorld(*startX, *startZ)
		*regionX, *regionZ = storage.RegionOf(pos)
	}

	// Открываем файл региона
	rf, err := storage.NewRegionFile(*worldPath, *regionX, *regionZ)
	if err != nil {
		log.Fatalf("cannot open region file: %v", err)
	}
	defer rf.Close()

	// Кеш чанков в памяти
	chunkCache := make(map[chunk.Pos]*chunk.Chunk)

	// Позиция камеры и курсора
	camX, camZ := *startX, *startZ
	curX, curY := 0, 0 // экранные координаты курсора

	draw := func() {
		termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

		width, height := termbox.Size()
		sx := *zoom
		sy := *zoom

		// Проходим по экранным координатам и выводим верхние блоки столбцов
		for py := 0; py < height; py += sy {
			for px := 0; px < width; px += sx {
				worldX := camX + px/sx
				worldZ := camZ + py/sy

				bt, _ := surfaceBlock(rf, chunkCache, worldX, worldZ)
				ch, fg, bg := blockSymbol(bt)

				for dy := 0; dy < sy; dy++ {
					for dx := 0; dx < sx; dx++ {
						termbox.SetCell(px+dx, py+dy, ch, fg, bg)
					}
				}
			}
		}

		// Выделяем курсор (инвертируем цвета)
		if curX < width && curY < height {
			cell := termbox.CellBuffer()[curY*width+curX]
			termbox.SetCell(curX, curY, cell.Ch, cell.Bg|termbox.AttrBold, cell.Fg)
		}

		// Заголовок
		header := fmt.Sprintf("Region (%d,%d)  Cam=(%d,%d)  Zoom=%dx  Chunks=%d", *regionX, *regionZ, camX, camZ, *zoom, rf.ChunkCount())
		for i, r := range header {
			termbox.SetCell(i, 0, r, termbox.ColorYellow|termbox.AttrBold, termbox.ColorBlack)
		}

		// Информация о столбце под курсором
		wx := camX + curX/sx
		wz := camZ + curY/sy
		bt, h := surfaceBlock(rf, chunkCache, wx, wz)
		info := fmt.Sprintf("Column (%d,%d) Surface=%s Height=%d", wx, wz, block.Get(bt).Name, h)
		for i, r := range info {
			if i >= width {
				break
			}
			termbox.SetCell(i, 1, r, termbox.ColorWhite, termbox.ColorBlack)
		}

		termbox.Flush()
	}

	draw()

	// Основной цикл
	for {
		switch ev := termbox.PollEvent(); ev.Type {
		case termbox.EventKey:
			switch ev.Key {
			case termbox.KeyEsc, termbox.KeyCtrlC:
				return
			case termbox.KeyArrowLeft:
				camX--
			case termbox.KeyArrowRight:
				camX++
			case termbox.KeyArrowUp:
				camZ--
			case termbox.KeyArrowDown:
				camZ++
			default:
				if ev.Ch == 'q' {
					return
				}
				if ev.Ch == '+' && *zoom < 4 {
					*zoom++
				}
				if ev.Ch == '-' && *zoom > 1 {
					*zoom--
				}
				// WASD для курсора
				width, height := termbox.Size()
				sx, sy := *zoom, *zoom
				if ev.Ch == 'a' && curX > 0 {
					curX -= sx
				}
				if ev.Ch == 'd' && curX < width-sx {
					curX += sx
				}
				if ev.Ch == 'w' && curY > 0 {
					curY -= sy
				}
				if ev.Ch == 's' && curY < height-sy {
					curY += sy
				}
			}
			draw()
		case termbox.EventError:
			log.Printf("termbox error: %v", ev.Err)
			return
		case termbox.EventResize:
			draw()
		}
	}
}

// chunkOfWorld возвращает чанковую координату мировой точки
func chunkOfWorld(wx, wz int) chunk.Pos {
	return chunk.Pos{X: floorDiv(wx, chunk.SizeX), Z: floorDiv(wz, chunk.SizeZ)}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Возвращает символ и цвета для типа блока
func blockSymbol(bt block.Type) (rune, termbox.Attribute, termbox.Attribute) {
	switch bt {
	case block.Grass:
		return '_', termbox.ColorGreen, termbox.ColorBlack
	case block.Dirt:
		return '.', termbox.ColorYellow, termbox.ColorBlack
	case block.Stone:
		return '#', termbox.ColorWhite, termbox.ColorBlack
	case block.Water:
		return '~', termbox.ColorBlue, termbox.ColorBlack
	case block.Sand:
		return ',', termbox.ColorYellow, termbox.ColorBlack
	case block.Wood:
		return '|', termbox.ColorRed, termbox.ColorBlack
	case block.Leaves:
		return '@', termbox.ColorGreen, termbox.ColorBlack
	case block.Snow:
		return '*', termbox.ColorWhite, termbox.ColorBlue
	case block.TallGrass:
		return '"', termbox.ColorGreen, termbox.ColorBlack
	case block.Flower:
		return 'f', termbox.ColorMagenta, termbox.ColorBlack
	case block.Lava:
		return '%', termbox.ColorRed, termbox.ColorBlack
	default:
		return ' ', termbox.ColorDefault, termbox.ColorDefault
	}
}

// surfaceBlock возвращает верхний непустой блок столбца и его высоту.
// Чанки за пределами региона или отсутствующие в файле считаются пустыми.
func surfaceBlock(rf *storage.RegionFile, cache map[chunk.Pos]*chunk.Chunk, wx, wz int) (block.Type, int) {
	pos := chunkOfWorld(wx, wz)
	if rx, rz := storage.RegionOf(pos); rx != *regionX || rz != *regionZ {
		return block.Air, 0
	}

	// Загружаем чанк из кеша либо из файла
	c, ok := cache[pos]
	if !ok {
		loaded, err := rf.GetChunk(pos)
		if err != nil {
			cache[pos] = nil
			return block.Air, 0
		}
		c = loaded
		cache[pos] = c
	}
	if c == nil {
		return block.Air, 0
	}

	// Локальные координаты блока внутри чанка
	lx := wx - pos.X*chunk.SizeX
	lz := wz - pos.Z*chunk.SizeZ

	for y := chunk.SizeY - 1; y >= 0; y-- {
		if bt := c.Block(lx, y, lz); !block.IsAir(bt) {
			return bt, y
		}
	}
	return block.Air, 0
}
