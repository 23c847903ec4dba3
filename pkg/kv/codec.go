package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"

	"marlin/searoutex/pkg/datastructure"
)

func Encode(polylines [][]datastructure.Coordinate) []byte {
	encoded, _ := binary.Marshal(polylines)
	return encoded
}

func Decode(bb []byte) ([][]datastructure.Coordinate, error) {
	var polylines [][]datastructure.Coordinate
	if err := binary.Unmarshal(bb, &polylines); err != nil {
		return nil, err
	}
	return polylines, nil
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
