package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Версия формата сериализованного чанка.
const chunkBlobVersion uint16 = 1

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// serializeChunk кодирует чанк в бинарный блоб:
// version(2) + flags(2) + rawLen(4) + zstd(blocks).
func serializeChunk(c *chunk.Chunk) ([]byte, error) {
	raw := c.SnapshotBlocks()
	buf := make([]byte, len(raw))
	for i, b := range raw {
		buf[i] = byte(b)
	}

	compressed := zstdEncoder.EncodeAll(buf, nil)

	blob := make([]byte, 8, 8+len(compressed))
	binary.LittleEndian.PutUint16(blob[0:2], chunkBlobVersion)
	binary.LittleEndian.PutUint16(blob[2:4], 0)
	binary.LittleEndian.PutUint32(blob[4:8], uint32(len(buf)))
	blob = append(blob, compressed...)
	return blob, nil
}

// deserializeChunk восстанавливает чанк из блоба.
func deserializeChunk(pos chunk.Pos, blob []byte) (*chunk.Chunk, error) {
	if len(blob) < 8 {
		return nil, fmt.Errorf("chunk blob too short: %d bytes", len(blob))
	}
	version := binary.LittleEndian.Uint16(blob[0:2])
	if version != chunkBlobVersion {
		return nil, fmt.Errorf("unsupported chunk blob version %d", version)
	}
	rawLen := binary.LittleEndian.Uint32(blob[4:8])
	if rawLen != uint32(chunk.BlockCount) {
		return nil, fmt.Errorf("unexpected block count %d, want %d", rawLen, chunk.BlockCount)
	}

	raw, err := zstdDecoder.DecodeAll(blob[8:], make([]byte, 0, rawLen))
	if err != nil {
		return nil, fmt.Errorf("decompress chunk %s: %w", pos.Key(), err)
	}
	if len(raw) != int(rawLen) {
		return nil, fmt.Errorf("decompressed size %d, want %d", len(raw), rawLen)
	}

	blocks := make([]block.Type, len(raw))
	for i, b := range raw {
		blocks[i] = block.Type(b)
	}
	return chunk.Restore(pos, blocks), nil
}
