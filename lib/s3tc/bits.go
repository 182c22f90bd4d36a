// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s3tc

// Block field offsets. BC2 and BC3 blocks are an 8 byte alpha half followed by
// an 8 byte color half laid out exactly like a BC1 block.
const (
	offColor0  = 0
	offColor1  = 2
	offIndices = 4

	offAlphaHalf  = 0
	offColorHalf  = 8
	offAlpha0     = 0
	offAlpha1     = 1
	offAlphaIndex = 2
)

func readU16LE(b []byte) uint16 {
	_ = b[1] // Early bounds check.
	return uint16(b[0]) | uint16(b[1])<<8
}

func readU32LE(b []byte) uint32 {
	_ = b[3] // Early bounds check.
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// readU48LE reads 6 bytes as one integer. BC3 alpha indices straddle byte
// boundaries (texel 2's index spans bytes 0 and 1, texel 5's spans 1 and 2,
// and so on), so they are extracted from the combined value, never per byte.
func readU48LE(b []byte) uint64 {
	_ = b[5] // Early bounds check.
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
}

func readU64LE(b []byte) uint64 {
	_ = b[7] // Early bounds check.
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// colorIndex returns texel i's 2-bit color index. i is the texel's raster
// order position, (4 * y) + x.
func colorIndex(indices uint32, i int) uint32 {
	return (indices >> (2 * i)) & 3
}

// alphaIndex returns texel i's 3-bit BC3 alpha index.
func alphaIndex(indices uint64, i int) uint32 {
	return uint32(indices>>(3*i)) & 7
}

// explicitAlpha returns texel i's 4-bit BC2 alpha value.
func explicitAlpha(bits uint64, i int) uint32 {
	return uint32(bits>>(4*i)) & 15
}

// ColorIndices unpacks the 16 2-bit color indices from the 4 bytes at
// b[0:4], in raster order.
func ColorIndices(b []byte) (ret [16]uint8) {
	indices := readU32LE(b)
	for i := range ret {
		ret[i] = uint8(colorIndex(indices, i))
	}
	return ret
}

// AlphaIndices unpacks the 16 3-bit BC3 alpha indices from the 6 bytes at
// b[0:6], in raster order.
func AlphaIndices(b []byte) (ret [16]uint8) {
	indices := readU48LE(b)
	for i := range ret {
		ret[i] = uint8(alphaIndex(indices, i))
	}
	return ret
}
