// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing what's needed by the github.com/nigeltao/s3tc module: encoding
// the *image.RGBA and *image.NRGBA images that S3TC decoding produces.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"errors"
	"image"
)

var (
	ErrBadArgument          = errors.New("nie: bad argument")
	ErrUnsupportedImageType = errors.New("nie: unsupported image type")
)

// EncodeBN4 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 4
// bytes per pixel (8 bits per channel).
func EncodeBN4(m image.Image) ([]byte, error) {
	return encode(m, '4')
}

// EncodeBN8 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 8
// bytes per pixel (16 bits per channel).
func EncodeBN8(m image.Image) ([]byte, error) {
	return encode(m, '8')
}

func encode(m image.Image, depth byte) (ret []byte, retErr error) {
	if m == nil {
		return nil, ErrBadArgument
	}
	b := m.Bounds()
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', depth)
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	switch m := m.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.NRGBAAt(x, y)
				ret = appendBGRA(ret, depth, at.B, at.G, at.R, at.A)
			}
		}
		return ret, nil

	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.RGBAAt(x, y)
				// Premultiplied and non-premultiplied alpha only coincide
				// for fully opaque or fully transparent pixels.
				if (at.A != 0x00) && (at.A != 0xFF) {
					return nil, ErrUnsupportedImageType
				}
				ret = appendBGRA(ret, depth, at.B, at.G, at.R, at.A)
			}
		}
		return ret, nil
	}

	return nil, ErrUnsupportedImageType
}

func appendBGRA(b []byte, depth byte, blue uint8, green uint8, red uint8, alpha uint8) []byte {
	if depth == '4' {
		return append(b, blue, green, red, alpha)
	}
	return append(b,
		blue, blue,
		green, green,
		red, red,
		alpha, alpha,
	)
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
