// Package chunk содержит модель чанка — единицу загрузки, выгрузки и
// рендера мира. Чанк владеет своими блоками и построенным артефактом
// геометрии; флаги "грязности" отмечают, что производные данные
// (геометрия или освещение) устарели и требуют перестройки.
package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/geom"
)

// Размеры чанка в блоках
const (
	SizeX = 16
	SizeY = 128
	SizeZ = 16

	// BlockCount — общее количество блоков в чанке
	BlockCount = SizeX * SizeY * SizeZ
)

// Pos — координата чанка в чанковом пространстве
type Pos struct {
	X int
	Z int
}

// Key возвращает строковый ключ чанка
func (p Pos) Key() string {
	return fmt.Sprintf("%d:%d", p.X, p.Z)
}

// World возвращает мировую позицию угла чанка
func (p Pos) World() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X * SizeX), 0, float32(p.Z * SizeZ)}
}

// Dist2 возвращает квадрат расстояния до другой чанковой координаты
func (p Pos) Dist2(o Pos) int {
	dx := p.X - o.X
	dz := p.Z - o.Z
	return dx*dx + dz*dz
}

// Chunk — столб блоков SizeX×SizeY×SizeZ с производными данными
type Chunk struct {
	Pos    Pos
	Blocks []block.Type
	Box    geom.AABB

	mesh          *Artifact
	geometryDirty bool
	lightingDirty bool
	visible       bool

	// revision растет при каждой пометке "грязным"; планировщик
	// перестроек сверяет ее, чтобы не потерять свежие изменения,
	// пришедшие во время выполняющейся перестройки
	revision uint64

	// animTick — локальный счетчик анимации текстур
	animTick uint32
}

// New создает пустой (заполненный воздухом) чанк в заданной координате.
// Новый чанк считается грязным: геометрию и освещение еще предстоит построить.
func New(pos Pos) *Chunk {
	min := pos.World()
	max := min.Add(mgl32.Vec3{SizeX, SizeY, SizeZ})
	return &Chunk{
		Pos:           pos,
		Blocks:        make([]block.Type, BlockCount),
		Box:           geom.NewAABB(min, max),
		geometryDirty: true,
		lightingDirty: true,
		revision:      1,
	}
}

// Restore создает чанк из ранее сохраненных блоков. Как и новый чанк,
// восстановленный считается грязным: артефакты на диске не хранятся.
func Restore(pos Pos, blocks []block.Type) *Chunk {
	c := New(pos)
	copy(c.Blocks, blocks)
	return c
}

// idx возвращает индекс блока по локальным координатам
func idx(x, y, z int) int {
	return (y*SizeZ+z)*SizeX + x
}

// Block возвращает тип блока по локальным координатам чанка
func (c *Chunk) Block(x, y, z int) block.Type {
	if x < 0 || y < 0 || z < 0 || x >= SizeX || y >= SizeY || z >= SizeZ {
		return block.Air
	}
	return c.Blocks[idx(x, y, z)]
}

// SetBlock меняет блок и помечает производные данные устаревшими
func (c *Chunk) SetBlock(x, y, z int, t block.Type) {
	if x < 0 || y < 0 || z < 0 || x >= SizeX || y >= SizeY || z >= SizeZ {
		return
	}
	c.Blocks[idx(x, y, z)] = t
	c.MarkGeometryDirty()
	c.MarkLightingDirty()
}

// MarkGeometryDirty помечает геометрию устаревшей
func (c *Chunk) MarkGeometryDirty() {
	c.geometryDirty = true
	c.revision++
}

// MarkLightingDirty помечает освещение устаревшим
func (c *Chunk) MarkLightingDirty() {
	c.lightingDirty = true
	c.revision++
}

// GeometryDirty возвращает флаг устаревшей геометрии
func (c *Chunk) GeometryDirty() bool { return c.geometryDirty }

// LightingDirty возвращает флаг устаревшего освещения
func (c *Chunk) LightingDirty() bool { return c.lightingDirty }

// Dirty возвращает true, если требуется перестройка
func (c *Chunk) Dirty() bool { return c.geometryDirty || c.lightingDirty }

// Revision возвращает текущую ревизию изменений чанка
func (c *Chunk) Revision() uint64 { return c.revision }

// ApplyMesh применяет построенный артефакт, если чанк не менялся после
// снятия снимка (ревизии совпадают); возвращает true при успехе.
// Вызывается только из главной горутины.
func (c *Chunk) ApplyMesh(a *Artifact, revision uint64) bool {
	if revision != c.revision {
		return false
	}
	c.mesh = a
	c.geometryDirty = false
	c.lightingDirty = false
	return true
}

// Mesh возвращает текущий артефакт геометрии (nil, если еще не построен)
func (c *Chunk) Mesh() *Artifact { return c.mesh }

// ReleaseMesh освобождает артефакт при выгрузке чанка
func (c *Chunk) ReleaseMesh() { c.mesh = nil }

// SetVisible выставляет флаг видимости (побочный эффект отсечения)
func (c *Chunk) SetVisible(v bool) { c.visible = v }

// Visible возвращает флаг видимости, вычисленный последним отсечением
func (c *Chunk) Visible() bool { return c.visible }

// Animate продвигает локальный счетчик анимации; вызывается для
// видимых чанков, не требующих перестройки
func (c *Chunk) Animate() { c.animTick++ }

// AnimationTick возвращает текущее значение счетчика анимации
func (c *Chunk) AnimationTick() uint32 { return c.animTick }

// SnapshotBlocks возвращает копию блоков для передачи воркеру перестройки
func (c *Chunk) SnapshotBlocks() []block.Type {
	snap := make([]block.Type, len(c.Blocks))
	copy(snap, c.Blocks)
	return snap
}

// Less задает стабильный полный порядок чанков относительно центра окна:
// сначала по квадрату расстояния до центра, затем лексикографически по
// (X, Z). Порядок детерминирован и не зависит от порядка загрузки.
func Less(a, b *Chunk, center Pos) bool {
	da, db := a.Pos.Dist2(center), b.Pos.Dist2(center)
	if da != db {
		return da < db
	}
	if a.Pos.X != b.Pos.X {
		return a.Pos.X < b.Pos.X
	}
	return a.Pos.Z < b.Pos.Z
}
