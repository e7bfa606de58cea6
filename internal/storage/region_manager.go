package storage

import (
	"container/list"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

const (
	// MaxOpenRegions - лимит одновременно открытых файлов регионов.
	MaxOpenRegions = 16

	// RegionSyncInterval - период фонового сброса грязных регионов на диск.
	RegionSyncInterval = 5 * time.Second
)

// RegionManager управляет открытыми регионами и их LRU-кешем.
type RegionManager struct {
	basePath       string
	regions        map[string]*RegionFile
	regionsMutex   sync.RWMutex
	maxOpenRegions int
	lruList        *list.List
	lruMap         map[string]*list.Element

	// Фоновый воркер синхронизации
	stopChan chan struct{}
	wg       sync.WaitGroup

	dirtyRegions map[string]bool // регионы с несброшенными записями
}

// LRU элемент для отслеживания использования регионов
type regionLRUItem struct {
	key        string
	lastAccess time.Time
}

// NewRegionManager создаёт менеджер регионов и запускает фоновый
// воркер синхронизации.
func NewRegionManager(basePath string) *RegionManager {
	rm := &RegionManager{
		basePath:       basePath,
		regions:        make(map[string]*RegionFile),
		maxOpenRegions: MaxOpenRegions,
		lruList:        list.New(),
		lruMap:         make(map[string]*list.Element),

		stopChan:     make(chan struct{}),
		dirtyRegions: make(map[string]bool),
	}

	rm.wg.Add(1)
	go rm.syncWorker()

	return rm
}

// Ключ региона по координатам чанка.
func regionKeyOf(pos chunk.Pos) string {
	rx, rz := RegionOf(pos)
	return fmt.Sprintf("%d:%d", rx, rz)
}

// Координаты региона из ключа.
func regionCoordsFromKey(key string) (int, int) {
	var rx, rz int
	fmt.Sscanf(key, "%d:%d", &rx, &rz)
	return rx, rz
}

// GetRegion получает или открывает регион по координатам чанка.
func (rm *RegionManager) GetRegion(pos chunk.Pos) (*RegionFile, error) {
	regionKey := regionKeyOf(pos)

	rm.regionsMutex.RLock()
	region, exists := rm.regions[regionKey]
	rm.regionsMutex.RUnlock()

	if exists {
		rm.touchLRU(regionKey)
		return region, nil
	}

	return rm.openRegion(regionKey)
}

// Открытие региона с вытеснением по LRU при превышении лимита.
func (rm *RegionManager) openRegion(regionKey string) (*RegionFile, error) {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()

	// Регион мог открыть кто-то другой, пока мы ждали лок
	if region, exists := rm.regions[regionKey]; exists {
		rm.updateLRULocked(regionKey)
		return region, nil
	}

	if len(rm.regions) >= rm.maxOpenRegions {
		if err := rm.closeOldestRegionLocked(); err != nil {
			return nil, fmt.Errorf("evict region: %w", err)
		}
	}

	rx, rz := regionCoordsFromKey(regionKey)

	region, err := NewRegionFile(rm.basePath, rx, rz)
	if err != nil {
		return nil, err
	}

	rm.regions[regionKey] = region

	item := &regionLRUItem{
		key:        regionKey,
		lastAccess: time.Now(),
	}
	element := rm.lruList.PushFront(item)
	rm.lruMap[regionKey] = element

	return region, nil
}

// Закрытие наименее используемого чистого региона. Грязные регионы
// не выгружаются: их сначала сбросит воркер синхронизации.
func (rm *RegionManager) closeOldestRegionLocked() error {
	if rm.lruList.Len() == 0 {
		return nil
	}

	var selected *list.Element
	for e := rm.lruList.Back(); e != nil; e = e.Prev() {
		item := e.Value.(*regionLRUItem)
		if rm.dirtyRegions[item.key] {
			continue
		}
		selected = e
		break
	}

	if selected == nil {
		return nil // все регионы грязные, не выгружаем
	}

	item := selected.Value.(*regionLRUItem)
	key := item.key

	region, exists := rm.regions[key]
	if !exists {
		rm.lruList.Remove(selected)
		delete(rm.lruMap, key)
		return nil
	}

	if err := region.Close(); err != nil {
		return err
	}

	delete(rm.regions, key)
	rm.lruList.Remove(selected)
	delete(rm.lruMap, key)

	return nil
}

// Обновление позиции в LRU кеше.
func (rm *RegionManager) touchLRU(key string) {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()
	rm.updateLRULocked(key)
}

func (rm *RegionManager) updateLRULocked(key string) {
	element, exists := rm.lruMap[key]
	if !exists {
		item := &regionLRUItem{
			key:        key,
			lastAccess: time.Now(),
		}
		element = rm.lruList.PushFront(item)
		rm.lruMap[key] = element
		return
	}

	item := element.Value.(*regionLRUItem)
	item.lastAccess = time.Now()
	rm.lruList.MoveToFront(element)
}

// LoadChunk читает чанк из регионального хранилища.
func (rm *RegionManager) LoadChunk(pos chunk.Pos) (*chunk.Chunk, error) {
	region, err := rm.GetRegion(pos)
	if err != nil {
		return nil, err
	}
	return region.GetChunk(pos)
}

// SaveChunk записывает чанк и помечает регион грязным; на диск запись
// уходит фоновым воркером или явным Flush.
func (rm *RegionManager) SaveChunk(c *chunk.Chunk) error {
	region, err := rm.GetRegion(c.Pos)
	if err != nil {
		return err
	}

	if err := region.SaveChunk(c); err != nil {
		return err
	}

	rm.setDirty(regionKeyOf(c.Pos), true)
	return nil
}

// HasChunk проверяет наличие чанка в хранилище.
func (rm *RegionManager) HasChunk(pos chunk.Pos) (bool, error) {
	region, err := rm.GetRegion(pos)
	if err != nil {
		return false, err
	}
	return region.HasChunk(pos), nil
}

// Flush синхронизирует все грязные регионы с диском.
func (rm *RegionManager) Flush() error {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()

	var lastErr error
	for key := range rm.dirtyRegions {
		region, exists := rm.regions[key]
		if !exists {
			delete(rm.dirtyRegions, key)
			continue
		}
		if err := region.Sync(); err != nil {
			log.Printf("Ошибка при sync региона %s: %v", key, err)
			lastErr = err
			continue
		}
		delete(rm.dirtyRegions, key)
	}
	return lastErr
}

// Close останавливает воркер, сбрасывает и закрывает все регионы.
func (rm *RegionManager) Close() error {
	// Сначала останавливаем фоновый воркер, чтобы он не держал R-локи
	close(rm.stopChan)
	rm.wg.Wait()

	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()

	var lastErr error
	for key, region := range rm.regions {
		if err := region.Close(); err != nil {
			log.Printf("Ошибка при закрытии региона %s: %v", key, err)
			lastErr = err
		}
	}

	rm.regions = make(map[string]*RegionFile)
	rm.lruList = list.New()
	rm.lruMap = make(map[string]*list.Element)
	rm.dirtyRegions = make(map[string]bool)

	return lastErr
}

// syncWorker периодически сбрасывает грязные регионы на диск.
func (rm *RegionManager) syncWorker() {
	defer rm.wg.Done()

	ticker := time.NewTicker(RegionSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rm.Flush(); err != nil {
				log.Printf("Ошибка фоновой синхронизации регионов: %v", err)
			}
		case <-rm.stopChan:
			return
		}
	}
}

// setDirty помечает регион «грязным» или «чистым».
func (rm *RegionManager) setDirty(regionKey string, dirty bool) {
	rm.regionsMutex.Lock()
	defer rm.regionsMutex.Unlock()
	if dirty {
		rm.dirtyRegions[regionKey] = true
	} else {
		delete(rm.dirtyRegions, regionKey)
	}
}
