// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package texload

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"

	"github.com/nigeltao/s3tc/lib/dds"
	"github.com/nigeltao/s3tc/lib/s3tc"
)

// solidBC1 is one BC1 block whose sixteen texels are opaque white.
var solidBC1 = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00}

func blocks(n int) []byte {
	return bytes.Repeat(solidBC1, n)
}

func checkWhite(tt *testing.T, name string, m image.Image, width int, height int) {
	tt.Helper()
	if got, want := m.Bounds(), image.Rect(0, 0, width, height); got != want {
		tt.Fatalf("tc=%q: Bounds: got %v, want %v", name, got, want)
	}
	want := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if got := m.At(x, y); got != want {
				tt.Fatalf("tc=%q: At(%d, %d): got %v, want %v", name, x, y, got, want)
			}
		}
	}
}

func TestLoad(tt *testing.T) {
	ddsFile := &bytes.Buffer{}
	if err := dds.WriteHeader(ddsFile, s3tc.FormatBC1, 6, 5); err != nil {
		tt.Fatalf("dds.WriteHeader: %v", err)
	}
	ddsFile.Write(blocks(4))

	compressedDDS, err := zstd.Compress(nil, ddsFile.Bytes())
	if err != nil {
		tt.Fatalf("zstd.Compress: %v", err)
	}
	compressedRaw, err := zstd.Compress(nil, blocks(4))
	if err != nil {
		tt.Fatalf("zstd.Compress: %v", err)
	}

	raw := &Raw{Format: s3tc.FormatBC1, Width: 6, Height: 5}
	testCases := []struct {
		name       string
		src        []byte
		raw        *Raw
		wantHeader bool
	}{
		{"dds", ddsFile.Bytes(), nil, true},
		{"dds ignores raw", ddsFile.Bytes(), &Raw{Format: s3tc.FormatBC3, Width: 1, Height: 1}, true},
		{"zstd dds", compressedDDS, nil, true},
		{"raw", blocks(4), raw, false},
		{"zstd raw", compressedRaw, raw, false},
	}

	for _, tc := range testCases {
		m, h, err := Load(tc.src, tc.raw, 1<<20, &s3tc.DecodeOptions{Concurrency: 1})
		if err != nil {
			tt.Errorf("tc=%q: Load: %v", tc.name, err)
			continue
		} else if (h != nil) != tc.wantHeader {
			tt.Errorf("tc=%q: header: got %v, want present=%t", tc.name, h, tc.wantHeader)
			continue
		}
		checkWhite(tt, tc.name, m, 6, 5)
	}
}

func TestLoadErrors(tt *testing.T) {
	testCases := []struct {
		name string
		src  []byte
		raw  *Raw
		want error
	}{
		{"missing raw", blocks(1), nil, ErrMissingRawParams},
		{"zero width", blocks(1), &Raw{Format: s3tc.FormatBC1, Height: 4}, ErrMissingRawParams},
		{"invalid format", blocks(1), &Raw{Width: 4, Height: 4}, ErrMissingRawParams},
		{"truncated", blocks(1), &Raw{Format: s3tc.FormatBC1, Width: 8, Height: 4}, s3tc.ErrTruncatedInput},
		{"bad dds", []byte("DDS not really"), nil, nil},
	}

	for _, tc := range testCases {
		_, _, err := Load(tc.src, tc.raw, 0, nil)
		if err == nil {
			tt.Errorf("tc=%q: got nil error", tc.name)
		} else if (tc.want != nil) && !errors.Is(err, tc.want) {
			tt.Errorf("tc=%q: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestUnwrap(tt *testing.T) {
	plain := []byte("not compressed")
	if got, err := Unwrap(plain, 0); (err != nil) || !bytes.Equal(got, plain) {
		tt.Fatalf("plain: got %q, %v", got, err)
	}

	if _, err := Unwrap([]byte(zstdMagic+"garbage"), 0); err == nil {
		tt.Fatalf("corrupt zstd: got nil error")
	}
}

func TestUnwrapMaxLen(tt *testing.T) {
	zeroes := make([]byte, 4<<20)
	compressed, err := zstd.Compress(nil, zeroes)
	if err != nil {
		tt.Fatalf("zstd.Compress: %v", err)
	}

	testCases := []struct {
		maxLen  int64
		wantErr error
	}{
		{0, nil},
		{4 << 20, nil},
		{4<<20 - 1, ErrTooLarge},
		{1 << 20, ErrTooLarge},
	}

	for _, tc := range testCases {
		got, err := Unwrap(compressed, tc.maxLen)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				tt.Errorf("maxLen=%d: got %v, want %v", tc.maxLen, err, tc.wantErr)
			}
		} else if err != nil {
			tt.Errorf("maxLen=%d: %v", tc.maxLen, err)
		} else if !bytes.Equal(got, zeroes) {
			tt.Errorf("maxLen=%d: decompressed %d bytes, want %d", tc.maxLen, len(got), len(zeroes))
		}
	}

	if _, _, err := Load(compressed, &Raw{Format: s3tc.FormatBC3, Width: 1024, Height: 1024}, 1<<20, nil); !errors.Is(err, ErrTooLarge) {
		tt.Errorf("Load: got %v, want %v", err, ErrTooLarge)
	}
}
