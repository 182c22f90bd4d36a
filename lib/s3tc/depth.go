// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s3tc

// ConvertDepth rescales the low srcBits bits of n, an unsigned channel value,
// to dstBits bits, rounding to nearest:
//
//	((n * 2 * dstMax) + srcMax) / (2 * srcMax)
//
// where xMax is (1 << xBits) - 1. Both bit depths must be in the range [1, 16].
//
// Widening and then narrowing back by the same depths gives back the original
// n, but the conversions are not exact inverses in the other order.
func ConvertDepth(n uint32, srcBits uint, dstBits uint) uint32 {
	srcMax := (uint32(1) << srcBits) - 1
	dstMax := (uint32(1) << dstBits) - 1
	n &= srcMax
	return ((n * 2 * dstMax) + srcMax) / (2 * srcMax)
}

// Expand widens the low srcBits bits of n to an 8-bit channel value.
func Expand(n uint32, srcBits uint) uint8 {
	return uint8(ConvertDepth(n, srcBits, 8))
}

// Reduce narrows an 8-bit channel value to dstBits bits.
func Reduce(n8 uint8, dstBits uint) uint32 {
	return ConvertDepth(uint32(n8), 8, dstBits)
}

// expand5 and expand6 are lookup tables for Expand with 5 and 6 source bits,
// the two depths used by RGB565.
var (
	expand5 [32]uint8
	expand6 [64]uint8
)

func init() {
	for i := range expand5 {
		expand5[i] = Expand(uint32(i), 5)
	}
	for i := range expand6 {
		expand6[i] = Expand(uint32(i), 6)
	}
}
