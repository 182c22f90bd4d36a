// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package s3tc implements decoding of the S3TC (S3 Texture Compression) block
// formats, also known as DXT1, DXT3 and DXT5 or, in Direct3D 10 and later
// terminology, BC1, BC2 and BC3.
//
// Every format stores an image as a grid of 4×4 pixel blocks. Each block is a
// fixed number of bytes (8 for BC1, 16 for BC2 and BC3) and decodes
// independently of every other block.
//
// S3TC is usually wrapped in .dds (DirectDraw Surface) container files, which
// prepend a header stating width, height and format. See the sibling dds
// package.
//
// S3TC is specified at
// https://registry.khronos.org/DataFormat/specs/1.3/dataformat.1.3.html#S3TC
package s3tc

import (
	"errors"
	"image"
	"image/color"
	"strings"
)

var (
	ErrBadArgument       = errors.New("s3tc: bad argument")
	ErrUnsupportedFormat = errors.New("s3tc: unsupported format")
	ErrTruncatedInput    = errors.New("s3tc: truncated input")
)

// SubsettableImage is an image.Image that also has a SubImage method, like all
// of the Go standard library's image types.
type SubsettableImage interface {
	image.Image
	SubImage(r image.Rectangle) image.Image
}

// AlphaModel is a Format's transparency model.
type AlphaModel uint8

const (
	AlphaModelOpaque = AlphaModel(0)
	AlphaModel1Bit   = AlphaModel(1)
	AlphaModel4Bit   = AlphaModel(2)
	AlphaModel8Bit   = AlphaModel(3)
)

// Format gives the block compression scheme.
//
// BC1 and BC1A share the same bit layout. They differ only in whether the
// "three color" mode's fourth palette entry is transparent black (BC1A) or
// opaque black (BC1).
//
// Like the ETC and DDS documentation, the "RGBA" formats here use
// non-premultiplied alpha. The corresponding image and color types from Go's
// standard library are called NRGBA, not RGBA.
type Format uint8

const (
	FormatInvalid = Format(0)

	FormatBC1  = Format(1)
	FormatBC1A = Format(2)
	FormatBC2  = Format(3)
	FormatBC3  = Format(4)
)

// Valid returns whether f is one of the BC1, BC1A, BC2 or BC3 formats.
func (f Format) Valid() bool {
	return (FormatBC1 <= f) && (f <= FormatBC3)
}

// AlphaModel returns the Format's transparency model.
func (f Format) AlphaModel() AlphaModel {
	switch f {
	case FormatBC1:
		return AlphaModelOpaque
	case FormatBC1A:
		return AlphaModel1Bit
	case FormatBC2:
		return AlphaModel4Bit
	case FormatBC3:
		return AlphaModel8Bit
	}
	return 0
}

// BytesPerBlock returns the Format-dependent number of bytes used to encode
// each 4×4 pixel block. It returns 0 for an invalid Format.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatBC1, FormatBC1A:
		return 8
	case FormatBC2, FormatBC3:
		return 16
	}
	return 0
}

// EncodedLen returns the number of bytes needed to hold a width×height image
// in the Format, including the padding of partial edge blocks. It returns 0
// for an invalid Format or a negative dimension.
func (f Format) EncodedLen(width int, height int) int {
	if (width < 0) || (height < 0) {
		return 0
	}
	return ((width + 3) / 4) * ((height + 3) / 4) * f.BytesPerBlock()
}

// ColorModel returns the Go standard library's color model that best matches
// the Format.
//
// BC1 and BC1A pixels are either fully opaque or transparent black, so their
// premultiplied and non-premultiplied forms coincide.
func (f Format) ColorModel() color.Model {
	switch f {
	case FormatBC1, FormatBC1A:
		return color.RGBAModel
	case FormatBC2, FormatBC3:
		return color.NRGBAModel
	}
	return nil
}

// NewImage returns an image.Image, whose concrete type is one of the standard
// library's image types, that's suitable for the Format.
//
// The requested width and height will be rounded up to a multiple of 4.
//
// It returns an error if the width or height is negative or above 65536.
func (f Format) NewImage(width int, height int) (SubsettableImage, error) {
	if (width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) {
		return nil, ErrBadArgument
	}
	r := image.Rect(0, 0, (width+3)&^3, (height+3)&^3)

	switch f {
	case FormatBC1, FormatBC1A:
		return image.NewRGBA(r), nil
	case FormatBC2, FormatBC3:
		return image.NewNRGBA(r), nil
	}

	return nil, ErrUnsupportedFormat
}

// OpenGLInternalFormat returns the OpenGL internalFormat enum value for f,
// suitable for passing to the glCompressedTexImage2D function.
func (f Format) OpenGLInternalFormat() uint32 {
	switch f {
	case FormatBC1:
		return 0x83F0 // GL_COMPRESSED_RGB_S3TC_DXT1_EXT
	case FormatBC1A:
		return 0x83F1 // GL_COMPRESSED_RGBA_S3TC_DXT1_EXT
	case FormatBC2:
		return 0x83F2 // GL_COMPRESSED_RGBA_S3TC_DXT3_EXT
	case FormatBC3:
		return 0x83F3 // GL_COMPRESSED_RGBA_S3TC_DXT5_EXT
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC1A:
		return "BC1A"
	case FormatBC2:
		return "BC2"
	case FormatBC3:
		return "BC3"
	}
	return "Invalid"
}

// ParseFormat returns the Format named by s, which is matched
// case-insensitively against both the BCn and the DXTn names.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "bc1", "dxt1":
		return FormatBC1, nil
	case "bc1a", "dxt1a":
		return FormatBC1A, nil
	case "bc2", "dxt2", "dxt3":
		return FormatBC2, nil
	case "bc3", "dxt4", "dxt5":
		return FormatBC3, nil
	}
	return FormatInvalid, ErrUnsupportedFormat
}
