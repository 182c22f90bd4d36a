// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s3tc

import (
	"image/color"
)

// Tile is a decoded 4×4 block: 16 non-premultiplied RGBA pixels, 4 bytes each,
// in raster order. Pixel (x, y) starts at byte offset (16 * y) + (4 * x).
type Tile [64]byte

// At returns the pixel at (x, y), for x and y in the range [0, 4).
func (t *Tile) At(x int, y int) color.NRGBA {
	i := (16 * y) + (4 * x)
	return color.NRGBA{t[i+0], t[i+1], t[i+2], t[i+3]}
}

// DecodeBlock decodes one block of the Format. src must hold at least
// f.BytesPerBlock() bytes. DecodeBlock panics if f is not Valid.
//
// The returned Tile is a fresh value. src is not modified.
func (f Format) DecodeBlock(src []byte) (dst Tile) {
	f.decodeBlock(&dst, src)
	return dst
}

func (f Format) decodeBlock(dst *Tile, src []byte) {
	switch f {
	case FormatBC1:
		DecodeBC1Block(dst, src, false)
	case FormatBC1A:
		DecodeBC1Block(dst, src, true)
	case FormatBC2:
		DecodeBC2Block(dst, src)
	case FormatBC3:
		DecodeBC3Block(dst, src)
	default:
		panic("s3tc: invalid format")
	}
}

// DecodeBC1Block decodes the 8 byte BC1 block at src[0:8]:
//
//	u16le color0, u16le color1, u32le colorIndices
//
// If alpha is set, texels using the three color mode's fourth palette entry
// are transparent black. Otherwise they are opaque black.
func DecodeBC1Block(dst *Tile, src []byte, alpha bool) {
	src = src[:8]
	table := NewColorTable(
		readU16LE(src[offColor0:]),
		readU16LE(src[offColor1:]),
		true, alpha)
	indices := readU32LE(src[offIndices:])

	for i := range 16 {
		c := &table[colorIndex(indices, i)]
		dst[(4*i)+0] = c[0]
		dst[(4*i)+1] = c[1]
		dst[(4*i)+2] = c[2]
		dst[(4*i)+3] = c[3]
	}
}

// DecodeBC2Block decodes the 16 byte BC2 block at src[0:16]:
//
//	u64le alphaBits, u16le color0, u16le color1, u32le colorIndices
//
// alphaBits holds one explicit 4-bit alpha value per texel.
func DecodeBC2Block(dst *Tile, src []byte) {
	src = src[:16]
	alphaBits := readU64LE(src[offAlphaHalf:])
	colorHalf := src[offColorHalf:]
	table := NewColorTable(
		readU16LE(colorHalf[offColor0:]),
		readU16LE(colorHalf[offColor1:]),
		false, false)
	indices := readU32LE(colorHalf[offIndices:])

	for i := range 16 {
		c := &table[colorIndex(indices, i)]
		dst[(4*i)+0] = c[0]
		dst[(4*i)+1] = c[1]
		dst[(4*i)+2] = c[2]
		dst[(4*i)+3] = expand4(explicitAlpha(alphaBits, i))
	}
}

// DecodeBC3Block decodes the 16 byte BC3 block at src[0:16]:
//
//	u8 alpha0, u8 alpha1, u48le alphaIndices,
//	u16le color0, u16le color1, u32le colorIndices
func DecodeBC3Block(dst *Tile, src []byte) {
	src = src[:16]
	ramp := NewAlphaRamp(src[offAlpha0], src[offAlpha1])
	alphaIndices := readU48LE(src[offAlphaIndex:])
	colorHalf := src[offColorHalf:]
	table := NewColorTable(
		readU16LE(colorHalf[offColor0:]),
		readU16LE(colorHalf[offColor1:]),
		false, false)
	indices := readU32LE(colorHalf[offIndices:])

	for i := range 16 {
		c := &table[colorIndex(indices, i)]
		dst[(4*i)+0] = c[0]
		dst[(4*i)+1] = c[1]
		dst[(4*i)+2] = c[2]
		dst[(4*i)+3] = ramp[alphaIndex(alphaIndices, i)]
	}
}
