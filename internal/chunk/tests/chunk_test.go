package chunk_test

import (
	"testing"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Новый чанк пуст, грязен и еще не имеет артефакта
func TestNewChunkIsDirtyAndEmpty(t *testing.T) {
	c := chunk.New(chunk.Pos{X: 2, Z: -3})

	if !c.Dirty() {
		t.Error("новый чанк должен быть грязным")
	}
	if c.Mesh() != nil {
		t.Error("новый чанк не должен иметь артефакта")
	}
	if got := c.Block(5, 60, 5); got != block.Air {
		t.Errorf("новый чанк должен быть заполнен воздухом, получено %v", got)
	}

	// Мировой AABB соответствует координате чанка
	want := float32(2 * chunk.SizeX)
	if c.Box.Min.X() != want {
		t.Errorf("Box.Min.X = %v, ожидалось %v", c.Box.Min.X(), want)
	}
}

// SetBlock меняет блок, поднимает флаги и ревизию
func TestSetBlockBumpsRevision(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	rev := c.Revision()

	c.SetBlock(1, 2, 3, block.Stone)

	if got := c.Block(1, 2, 3); got != block.Stone {
		t.Errorf("Block(1,2,3) = %v, ожидалось Stone", got)
	}
	if c.Revision() <= rev {
		t.Errorf("ревизия не выросла: %d -> %d", rev, c.Revision())
	}
	if !c.GeometryDirty() || !c.LightingDirty() {
		t.Error("SetBlock должен помечать геометрию и освещение устаревшими")
	}

	// Координаты за пределами чанка игнорируются
	c.SetBlock(-1, 0, 0, block.Stone)
	c.SetBlock(0, chunk.SizeY, 0, block.Stone)
	if got := c.Block(-1, 0, 0); got != block.Air {
		t.Errorf("чтение за пределами чанка должно давать воздух, получено %v", got)
	}
}

// ApplyMesh принимает артефакт только при совпадении ревизий
func TestApplyMeshRejectsStaleRevision(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	rev := c.Revision()

	// Изменение после снятия снимка: старая ревизия отклоняется
	c.SetBlock(0, 0, 0, block.Dirt)
	if c.ApplyMesh(&chunk.Artifact{}, rev) {
		t.Fatal("устаревшая ревизия не должна применяться")
	}
	if c.Mesh() != nil {
		t.Fatal("отклоненный артефакт не должен сохраняться")
	}

	// Свежая ревизия применяется и снимает флаги
	if !c.ApplyMesh(&chunk.Artifact{}, c.Revision()) {
		t.Fatal("актуальная ревизия должна применяться")
	}
	if c.Dirty() {
		t.Error("после применения артефакта чанк должен быть чистым")
	}
	if c.Mesh() == nil {
		t.Error("артефакт должен сохраниться")
	}
}

// Снимок блоков — независимая копия
func TestSnapshotBlocksIsCopy(t *testing.T) {
	c := chunk.New(chunk.Pos{})
	c.SetBlock(0, 0, 0, block.Sand)

	snap := c.SnapshotBlocks()
	c.SetBlock(0, 0, 0, block.Stone)

	if snap[0] != block.Sand {
		t.Errorf("снимок изменился вместе с чанком: %v", snap[0])
	}
}

// Restore возвращает грязный чанк с сохраненными блоками
func TestRestoreKeepsBlocks(t *testing.T) {
	src := chunk.New(chunk.Pos{X: 1, Z: 1})
	src.SetBlock(3, 10, 7, block.Wood)

	restored := chunk.Restore(src.Pos, src.SnapshotBlocks())

	if got := restored.Block(3, 10, 7); got != block.Wood {
		t.Errorf("Block(3,10,7) = %v, ожидалось Wood", got)
	}
	if !restored.Dirty() {
		t.Error("восстановленный чанк должен быть грязным: артефакты не хранятся")
	}
}

// Less упорядочивает по расстоянию до центра, затем по (X, Z)
func TestLessOrdering(t *testing.T) {
	center := chunk.Pos{}
	near := chunk.New(chunk.Pos{X: 1, Z: 0})
	far := chunk.New(chunk.Pos{X: 2, Z: 2})

	if !chunk.Less(near, far, center) {
		t.Error("ближний чанк должен идти раньше дальнего")
	}
	if chunk.Less(far, near, center) {
		t.Error("порядок должен быть антисимметричным")
	}

	// Равные расстояния: лексикографический порядок по X, затем Z
	a := chunk.New(chunk.Pos{X: -1, Z: 0})
	b := chunk.New(chunk.Pos{X: 1, Z: 0})
	if !chunk.Less(a, b, center) {
		t.Error("при равном расстоянии порядок определяется X")
	}
}
