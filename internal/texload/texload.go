// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package texload loads the texture inputs accepted by the s3tcdecode and
// s3tcserve programs: a DDS file or a headerless block stream, either of
// which may be zstd compressed.
package texload

import (
	"bytes"
	"image"
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"

	"github.com/nigeltao/s3tc/lib/dds"
	"github.com/nigeltao/s3tc/lib/s3tc"
)

var (
	ErrMissingRawParams = errors.New("texload: headerless input needs a format, width and height")
	ErrTooLarge         = errors.New("texload: decompressed input is too large")
)

// zstdMagic is the little-endian encoding of the Zstandard frame magic number
// 0xFD2FB528.
const zstdMagic = "\x28\xB5\x2F\xFD"

// Raw describes a headerless block stream.
type Raw struct {
	Format s3tc.Format
	Width  int
	Height int
}

// Valid returns whether r fully describes a block stream.
func (r *Raw) Valid() bool {
	return (r != nil) && r.Format.Valid() && (r.Width > 0) && (r.Height > 0)
}

// IsZstd returns whether src starts with a Zstandard frame.
func IsZstd(src []byte) bool {
	return bytes.HasPrefix(src, []byte(zstdMagic))
}

// IsDDS returns whether src starts with a DDS header.
func IsDDS(src []byte) bool {
	return bytes.HasPrefix(src, []byte(dds.Magic))
}

// Unwrap returns src decompressed, if it is zstd compressed, or src itself.
// A positive maxLen caps the decompressed size. Exceeding it gives
// ErrTooLarge.
func Unwrap(src []byte, maxLen int64) ([]byte, error) {
	if !IsZstd(src) {
		return src, nil
	}
	zr := zstd.NewReader(bytes.NewReader(src))
	defer zr.Close()

	var r io.Reader = zr
	if maxLen > 0 {
		r = io.LimitReader(zr, maxLen+1)
	}
	dst, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "texload: zstd")
	} else if (maxLen > 0) && (int64(len(dst)) > maxLen) {
		return nil, errors.Wrapf(ErrTooLarge, "texload: zstd input exceeds %d bytes", maxLen)
	}
	return dst, nil
}

// Split returns the block stream within src, which must already be
// unwrapped, and a description of it. DDS input is recognized by its magic
// and ignores raw. Any other input is a block stream described by raw. The
// returned header is nil for block streams.
func Split(src []byte, raw *Raw) ([]byte, Raw, *dds.Header, error) {
	if IsDDS(src) {
		h, err := dds.ReadHeader(bytes.NewReader(src))
		if err != nil {
			return nil, Raw{}, nil, err
		}
		desc := Raw{Format: h.Format, Width: int(h.Width), Height: int(h.Height)}
		return src[h.DataOffset:], desc, h, nil
	}

	if !raw.Valid() {
		return nil, Raw{}, nil, ErrMissingRawParams
	}
	return src, *raw, nil, nil
}

// Load decodes src after Unwrap, passing maxLen, and Split.
//
// options may be nil, which means to use the default configuration.
func Load(src []byte, raw *Raw, maxLen int64, options *s3tc.DecodeOptions) (image.Image, *dds.Header, error) {
	src, err := Unwrap(src, maxLen)
	if err != nil {
		return nil, nil, err
	}
	blocks, desc, h, err := Split(src, raw)
	if err != nil {
		return nil, nil, err
	}
	m, err := s3tc.DecodeImageWithOptions(blocks, desc.Format, desc.Width, desc.Height, options)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "texload: %dx%d %v", desc.Width, desc.Height, desc.Format)
	}
	return m, h, nil
}
