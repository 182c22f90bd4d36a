// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package s3tc

import (
	"image"
	"io"
	"runtime"
	"sync"
)

// Layout is the pixel layout of a decoded raster.
type Layout uint8

const (
	// LayoutRGBA8888 is 4 bytes per pixel: R, G, B and non-premultiplied A.
	LayoutRGBA8888 = Layout(0)
	// LayoutRGB888 is 3 bytes per pixel: R, G and B. Alpha is discarded.
	LayoutRGB888 = Layout(1)
)

// BytesPerPixel returns 4, 3 or, for an invalid Layout, 0.
func (l Layout) BytesPerPixel() int {
	switch l {
	case LayoutRGBA8888:
		return 4
	case LayoutRGB888:
		return 3
	}
	return 0
}

// DecodeOptions are optional arguments to DecodeRaster. The zero value is
// valid and means to use the default configuration.
type DecodeOptions struct {
	// Concurrency is the maximum number of goroutines that decode blocks. Zero
	// means runtime.GOMAXPROCS(0). One means to decode on the calling
	// goroutine. The decoded pixels do not depend on this value.
	Concurrency int
}

// minBlocksPerWorker is the smallest share of an image worth handing to its
// own goroutine.
const minBlocksPerWorker = 256

// raster is a destination pixel buffer. Pixel (x, y) starts at byte offset
// (y * stride) + (x * bpp) of pix.
type raster struct {
	pix    []byte
	stride int
	bpp    int
	width  int
	height int
}

// DecodeRaster decodes the width×height image whose blocks are stored in src
// into dst, a row-major buffer with stride width*layout.BytesPerPixel().
//
// The blocks are read in raster order: (width+3)/4 blocks per row,
// (height+3)/4 rows. Pixels of partial edge blocks that fall outside width or
// height are discarded.
//
// It returns ErrUnsupportedFormat if f is not Valid, ErrBadArgument if the
// dimensions or layout are invalid or dst is too short, and ErrTruncatedInput
// if src is shorter than f.EncodedLen(width, height). dst is left untouched
// when an error is returned.
//
// options may be nil, which means to use the default configuration.
func (f Format) DecodeRaster(dst []byte, src []byte, width int, height int, layout Layout, options *DecodeOptions) error {
	if !f.Valid() {
		return ErrUnsupportedFormat
	}
	bpp := layout.BytesPerPixel()
	if (bpp == 0) ||
		(width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) ||
		(len(dst) < (width * height * bpp)) {
		return ErrBadArgument
	}
	if len(src) < f.EncodedLen(width, height) {
		return ErrTruncatedInput
	}

	f.decodeRaster(&raster{
		pix:    dst,
		stride: width * bpp,
		bpp:    bpp,
		width:  width,
		height: height,
	}, src, options)
	return nil
}

// Decode reads blocksWide×blocksHigh blocks from r and decodes them into dst,
// whose top-left 4*blocksWide × 4*blocksHigh pixels are overwritten. dst must
// have the concrete type that f.NewImage returns. BC1 and BC1A also accept an
// *image.NRGBA, since their pixels are the same either way.
//
// Exactly f.BytesPerBlock() * blocksWide * blocksHigh bytes are read, all of
// them before any pixel is written. A short read gives ErrTruncatedInput.
func (f Format) Decode(dst SubsettableImage, r io.Reader, blocksWide int, blocksHigh int) error {
	if !f.Valid() {
		return ErrUnsupportedFormat
	}
	if (dst == nil) || (r == nil) ||
		(blocksWide < 0) || (blocksWide >= 16384) ||
		(blocksHigh < 0) || (blocksHigh >= 16384) {
		return ErrBadArgument
	}

	ras, ok := f.rasterFor(dst, 4*blocksWide, 4*blocksHigh)
	if !ok {
		return ErrBadArgument
	}

	src, err := readBlocks(r, blocksWide*blocksHigh*f.BytesPerBlock())
	if err != nil {
		return err
	}

	f.decodeRaster(ras, src, nil)
	return nil
}

// readBlocks reads exactly n bytes from r. The buffer grows with the bytes
// actually read, so a short r costs no more than its own length.
func readBlocks(r io.Reader, n int) ([]byte, error) {
	src, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	} else if len(src) < n {
		return nil, ErrTruncatedInput
	}
	return src, nil
}

// DecodeImage decodes the width×height image whose blocks are stored in src.
// The concrete type of the result is that of f.NewImage.
func DecodeImage(src []byte, f Format, width int, height int) (SubsettableImage, error) {
	return DecodeImageWithOptions(src, f, width, height, nil)
}

// DecodeImageWithOptions is like DecodeImage but with explicit options.
//
// options may be nil, which means to use the default configuration.
func DecodeImageWithOptions(src []byte, f Format, width int, height int, options *DecodeOptions) (SubsettableImage, error) {
	if !f.Valid() {
		return nil, ErrUnsupportedFormat
	}
	if (width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) {
		return nil, ErrBadArgument
	}
	if len(src) < f.EncodedLen(width, height) {
		return nil, ErrTruncatedInput
	}
	m, err := f.NewImage(width, height)
	if err != nil {
		return nil, err
	}

	b := m.Bounds()
	ras, ok := f.rasterFor(m, b.Dx(), b.Dy())
	if !ok {
		return nil, ErrBadArgument
	}
	f.decodeRaster(ras, src, options)

	return m.SubImage(image.Rect(0, 0, width, height)).(SubsettableImage), nil
}

// rasterFor returns the top-left width×height region of m's pixel buffer.
// Tiles hold non-premultiplied alpha, so a premultiplied *image.RGBA is only
// accepted for formats whose alpha is 0x00 or 0xFF.
func (f Format) rasterFor(m image.Image, width int, height int) (*raster, bool) {
	var pix []byte
	var stride int
	var b image.Rectangle

	switch m := m.(type) {
	case *image.RGBA:
		if f.AlphaModel() > AlphaModel1Bit {
			return nil, false
		}
		pix, stride, b = m.Pix, m.Stride, m.Rect
	case *image.NRGBA:
		pix, stride, b = m.Pix, m.Stride, m.Rect
	default:
		return nil, false
	}

	if (b.Dx() < width) || (b.Dy() < height) {
		return nil, false
	}
	return &raster{
		pix:    pix,
		stride: stride,
		bpp:    4,
		width:  width,
		height: height,
	}, true
}

func (f Format) decodeRaster(ras *raster, src []byte, options *DecodeOptions) {
	blocksWide := (ras.width + 3) / 4
	blocksHigh := (ras.height + 3) / 4

	workers := 0
	if options != nil {
		workers = options.Concurrency
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, blocksHigh, (blocksWide*blocksHigh)/minBlocksPerWorker)

	if workers <= 1 {
		f.decodeBlockRows(ras, src, 0, blocksHigh)
		return
	}

	// Each worker owns a contiguous run of block rows and therefore a disjoint
	// band of pixel rows.
	rowsPerWorker := (blocksHigh + workers - 1) / workers
	var wg sync.WaitGroup
	for by0 := 0; by0 < blocksHigh; by0 += rowsPerWorker {
		by1 := min(by0+rowsPerWorker, blocksHigh)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.decodeBlockRows(ras, src, by0, by1)
		}()
	}
	wg.Wait()
}

// decodeBlockRows decodes the block rows in the half-open range [by0, by1).
func (f Format) decodeBlockRows(ras *raster, src []byte, by0 int, by1 int) {
	blocksWide := (ras.width + 3) / 4
	n := f.BytesPerBlock()
	tile := Tile{}

	for by := by0; by < by1; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			off := ((by * blocksWide) + bx) * n
			f.decodeBlock(&tile, src[off:off+n])
			ras.writeTile(&tile, 4*bx, 4*by)
		}
	}
}

// writeTile copies the part of t that lies within the raster, with t's
// top-left pixel at (x0, y0).
func (ras *raster) writeTile(t *Tile, x0 int, y0 int) {
	nx := min(4, ras.width-x0)
	ny := min(4, ras.height-y0)

	for y := range ny {
		row := ras.pix[((y0+y)*ras.stride)+(x0*ras.bpp):]
		src := t[16*y:]
		if ras.bpp == 4 {
			copy(row[:4*nx], src[:4*nx])
			continue
		}
		for x := range nx {
			row[(3*x)+0] = src[(4*x)+0]
			row[(3*x)+1] = src[(4*x)+1]
			row[(3*x)+2] = src[(4*x)+2]
		}
	}
}
