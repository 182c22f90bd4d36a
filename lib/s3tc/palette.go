// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s3tc

// UnpackRGB565 splits a 16-bit RGB565 color (red in the most significant 5
// bits, blue in the least significant 5 bits) into three 8-bit channels.
func UnpackRGB565(c uint16) (r uint8, g uint8, b uint8) {
	return expand5[(c>>11)&0x1F], expand6[(c>>5)&0x3F], expand5[c&0x1F]
}

// mix is the weighted average of two channel values, rounding down:
// ((w0 * c0) + (w1 * c1)) / (w0 + w1).
func mix(w0 uint32, c0 uint8, w1 uint32, c1 uint8) uint8 {
	return uint8(((w0 * uint32(c0)) + (w1 * uint32(c1))) / (w0 + w1))
}

func mixRGBA(w0 uint32, c0 [4]uint8, w1 uint32, c1 [4]uint8) [4]uint8 {
	return [4]uint8{
		mix(w0, c0[0], w1, c1[0]),
		mix(w0, c0[1], w1, c1[1]),
		mix(w0, c0[2], w1, c1[2]),
		0xFF,
	}
}

// ColorTable is a block's 4 entry palette, indexed by 2-bit color indices.
// Each entry is non-premultiplied RGBA.
type ColorTable [4][4]uint8

// NewColorTable builds the palette for the reference colors c0 and c1.
//
// With threeColorMode false (BC2 and BC3) the palette always has four
// distinct interpolation points. With threeColorMode true (BC1 and BC1A) that
// only applies when c0 > c1 as raw 16-bit values. Otherwise, entry 2 is the
// midpoint and entry 3 is black, transparent if transparentBlack is set.
func NewColorTable(c0 uint16, c1 uint16, threeColorMode bool, transparentBlack bool) (t ColorTable) {
	r0, g0, b0 := UnpackRGB565(c0)
	r1, g1, b1 := UnpackRGB565(c1)
	t[0] = [4]uint8{r0, g0, b0, 0xFF}
	t[1] = [4]uint8{r1, g1, b1, 0xFF}

	if !threeColorMode || (c0 > c1) {
		t[2] = mixRGBA(2, t[0], 1, t[1])
		t[3] = mixRGBA(1, t[0], 2, t[1])
	} else {
		t[2] = mixRGBA(1, t[0], 1, t[1])
		if transparentBlack {
			t[3] = [4]uint8{0x00, 0x00, 0x00, 0x00}
		} else {
			t[3] = [4]uint8{0x00, 0x00, 0x00, 0xFF}
		}
	}
	return t
}

// AlphaRamp is a BC3 block's 8 entry alpha palette, indexed by 3-bit alpha
// indices.
type AlphaRamp [8]uint8

// NewAlphaRamp builds the BC3 alpha palette for the reference alphas a0 and
// a1. When a0 > a1, entries 2 to 7 interpolate between them in sevenths.
// Otherwise entries 2 to 5 interpolate in fifths and entries 6 and 7 are the
// fixed extremes 0x00 and 0xFF.
func NewAlphaRamp(a0 uint8, a1 uint8) (r AlphaRamp) {
	r[0] = a0
	r[1] = a1
	if a0 > a1 {
		for i := uint32(2); i < 8; i++ {
			r[i] = mix(8-i, a0, i-1, a1)
		}
	} else {
		for i := uint32(2); i < 6; i++ {
			r[i] = mix(6-i, a0, i-1, a1)
		}
		r[6] = 0x00
		r[7] = 0xFF
	}
	return r
}

// expand4 maps a 4-bit BC2 alpha value v to (v * 255) / 15, which is exact.
func expand4(v uint32) uint8 {
	return uint8((v * 255) / 15)
}
