// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dds implements the DDS (DirectDraw Surface) container format for
// S3TC textures.
//
// Only the S3TC subset is supported: the legacy DXT1 to DXT5 FourCC codes and
// the equivalent BC1 to BC3 DXGI formats of the DX10 extended header. Only the
// top level of a mipmap chain is decoded.
package dds

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"

	"github.com/nigeltao/s3tc/lib/s3tc"
)

// Magic is the byte string prefix of every DDS image file.
const Magic = "DDS "

func init() {
	image.RegisterFormat("dds", Magic, Decode, DecodeConfig)
}

var (
	ErrBadArgument     = errors.New("dds: bad argument")
	ErrNotADDSFile     = errors.New("dds: not a DDS file")
	ErrImageIsTooLarge = errors.New("dds: image is too large")
)

const (
	headerSize      = 128 // Including the 4 byte magic.
	dx10HeaderSize  = 20
	pixelFormatSize = 32

	flagCaps        = 0x00000001
	flagHeight      = 0x00000002
	flagWidth       = 0x00000004
	flagPixelFormat = 0x00001000
	flagLinearSize  = 0x00080000

	pixelFlagAlphaPixels = 0x00000001
	pixelFlagFourCC      = 0x00000004

	capsTexture = 0x00001000

	dxgiFormatBC1Unorm     = 71
	dxgiFormatBC1UnormSRGB = 72
	dxgiFormatBC2Unorm     = 74
	dxgiFormatBC2UnormSRGB = 75
	dxgiFormatBC3Unorm     = 77
	dxgiFormatBC3UnormSRGB = 78
)

// Header is the decoded DDS header.
type Header struct {
	Width            uint32
	Height           uint32
	MipMapCount      uint32
	Flags            uint32
	PixelFormatFlags uint32
	FourCC           string

	// DXGIFormat is the DX10 extended header's format, or zero if there is no
	// extended header.
	DXGIFormat uint32

	// Format is the S3TC format that the FourCC or DXGIFormat resolves to.
	Format s3tc.Format

	// DataOffset is the byte offset of the first block: the combined size of
	// the magic, header and any extended header.
	DataOffset int
}

// LevelSize returns the number of bytes of the top level of the mipmap chain.
func (h *Header) LevelSize() int {
	return h.Format.EncodedLen(int(h.Width), int(h.Height))
}

// ReadHeader reads a DDS header, including any DX10 extended header, from r.
// On success, r is positioned at the first block.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := [headerSize + dx10HeaderSize]byte{}
	if _, err := io.ReadFull(r, buf[:headerSize]); err != nil {
		return nil, errors.Wrap(err, "dds: reading header")
	} else if (string(buf[0:4]) != Magic) ||
		(binary.LittleEndian.Uint32(buf[4:]) != headerSize-4) ||
		(binary.LittleEndian.Uint32(buf[76:]) != pixelFormatSize) {
		return nil, ErrNotADDSFile
	}

	h := &Header{
		Flags:            binary.LittleEndian.Uint32(buf[8:]),
		Height:           binary.LittleEndian.Uint32(buf[12:]),
		Width:            binary.LittleEndian.Uint32(buf[16:]),
		MipMapCount:      binary.LittleEndian.Uint32(buf[28:]),
		PixelFormatFlags: binary.LittleEndian.Uint32(buf[80:]),
		FourCC:           string(buf[84:88]),
		DataOffset:       headerSize,
	}

	if (h.Width == 0) || (h.Height == 0) {
		return nil, ErrNotADDSFile
	} else if (h.Width >= 65536) || (h.Height >= 65536) {
		return nil, ErrImageIsTooLarge
	}

	if (h.PixelFormatFlags & pixelFlagFourCC) == 0 {
		return nil, errors.Wrap(s3tc.ErrUnsupportedFormat, "dds: uncompressed pixel format")
	}

	if h.FourCC == "DX10" {
		if _, err := io.ReadFull(r, buf[headerSize:]); err != nil {
			return nil, errors.Wrap(err, "dds: reading DX10 header")
		}
		h.DXGIFormat = binary.LittleEndian.Uint32(buf[headerSize:])
		h.DataOffset += dx10HeaderSize
		if h.Format = formatFromDXGI(h.DXGIFormat); h.Format == s3tc.FormatInvalid {
			return nil, errors.Wrapf(s3tc.ErrUnsupportedFormat, "dds: DXGI format %d", h.DXGIFormat)
		}
		return h, nil
	}

	if h.Format = formatFromFourCC(h.FourCC, h.PixelFormatFlags); h.Format == s3tc.FormatInvalid {
		return nil, errors.Wrapf(s3tc.ErrUnsupportedFormat, "dds: FourCC %q", h.FourCC)
	}
	return h, nil
}

// formatFromFourCC maps a legacy FourCC code to an S3TC format. DXT2 and DXT4
// are the premultiplied alpha variants of DXT3 and DXT5. Their blocks decode
// identically.
func formatFromFourCC(fourCC string, pixelFormatFlags uint32) s3tc.Format {
	switch fourCC {
	case "DXT1":
		if (pixelFormatFlags & pixelFlagAlphaPixels) != 0 {
			return s3tc.FormatBC1A
		}
		return s3tc.FormatBC1
	case "DXT2", "DXT3":
		return s3tc.FormatBC2
	case "DXT4", "DXT5":
		return s3tc.FormatBC3
	}
	return s3tc.FormatInvalid
}

// formatFromDXGI maps a DXGI_FORMAT to an S3TC format. Like Go's standard
// library, this package doesn't discriminate between RGB and sRGB.
func formatFromDXGI(dxgiFormat uint32) s3tc.Format {
	switch dxgiFormat {
	case dxgiFormatBC1Unorm, dxgiFormatBC1UnormSRGB:
		return s3tc.FormatBC1A
	case dxgiFormatBC2Unorm, dxgiFormatBC2UnormSRGB:
		return s3tc.FormatBC2
	case dxgiFormatBC3Unorm, dxgiFormatBC3UnormSRGB:
		return s3tc.FormatBC3
	}
	return s3tc.FormatInvalid
}

// DecodeConfig reads a DDS image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: h.Format.ColorModel(),
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// Decode reads the top level of a DDS image from r.
func Decode(r io.Reader) (image.Image, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return DecodeLevel(h, r, nil)
}

// DecodeLevel decodes the top level of the mipmap chain whose header h has
// already been read from r.
//
// options may be nil, which means to use the default configuration.
func DecodeLevel(h *Header, r io.Reader, options *s3tc.DecodeOptions) (image.Image, error) {
	if (h == nil) || (r == nil) {
		return nil, ErrBadArgument
	}
	width, height := int(h.Width), int(h.Height)

	// The buffer grows with the bytes read, not with the header's claimed size.
	n := h.LevelSize()
	src, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, errors.Wrap(err, "dds: reading blocks")
	} else if len(src) < n {
		return nil, errors.Wrapf(s3tc.ErrTruncatedInput, "dds: %dx%d %v level", width, height, h.Format)
	}

	m, err := s3tc.DecodeImageWithOptions(src, h.Format, width, height, options)
	if err != nil {
		return nil, errors.Wrap(err, "dds: decoding blocks")
	}
	return m, nil
}

// WriteHeader writes a legacy (FourCC) DDS header for a width×height image
// in the format f. The f.EncodedLen(width, height) bytes of blocks that
// follow are the caller's to write.
func WriteHeader(w io.Writer, f s3tc.Format, width int, height int) error {
	if (w == nil) || (width <= 0) || (height <= 0) {
		return ErrBadArgument
	} else if (width >= 65536) || (height >= 65536) {
		return ErrImageIsTooLarge
	}

	fourCC, pixelFormatFlags := "", uint32(pixelFlagFourCC)
	switch f {
	case s3tc.FormatBC1:
		fourCC = "DXT1"
	case s3tc.FormatBC1A:
		fourCC = "DXT1"
		pixelFormatFlags |= pixelFlagAlphaPixels
	case s3tc.FormatBC2:
		fourCC = "DXT3"
	case s3tc.FormatBC3:
		fourCC = "DXT5"
	default:
		return s3tc.ErrUnsupportedFormat
	}

	buf := [headerSize]byte{}
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:], headerSize-4)
	binary.LittleEndian.PutUint32(buf[8:], flagCaps|flagHeight|flagWidth|flagPixelFormat|flagLinearSize)
	binary.LittleEndian.PutUint32(buf[12:], uint32(height))
	binary.LittleEndian.PutUint32(buf[16:], uint32(width))
	binary.LittleEndian.PutUint32(buf[20:], uint32(f.EncodedLen(width, height)))
	binary.LittleEndian.PutUint32(buf[76:], pixelFormatSize)
	binary.LittleEndian.PutUint32(buf[80:], pixelFormatFlags)
	copy(buf[84:88], fourCC)
	binary.LittleEndian.PutUint32(buf[108:], capsTexture)

	_, err := w.Write(buf[:])
	return err
}
