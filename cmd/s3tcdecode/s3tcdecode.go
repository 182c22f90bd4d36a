// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// s3tcdecode decodes S3TC (BC1, BC2 and BC3) compressed textures.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v3"

	"github.com/nigeltao/s3tc/internal/nie"
	"github.com/nigeltao/s3tc/internal/texload"
	"github.com/nigeltao/s3tc/lib/dds"
	"github.com/nigeltao/s3tc/lib/s3tc"
)

var (
	formatFlag = flag.String("format", "", "block format of headerless input")
	heightFlag = flag.Int("height", 0, "image height of headerless input")
	infoFlag   = flag.Bool("info", false, "whether to print a YAML report instead of decoding")
	jFlag      = flag.Int("j", 0, "maximum number of decoding goroutines; 0 means GOMAXPROCS")
	outputFlag = flag.String("output", "", "output format")
	widthFlag  = flag.Int("width", 0, "image width of headerless input")
)

const usageStr = `s3tcdecode decodes S3TC (BC1, BC2 and BC3) compressed textures.

Usage:

    s3tcdecode [flags] [path]

The path to the input file is optional. If omitted, stdin is read. The input
is either a DDS file or a headerless block stream, optionally zstd compressed.
Headerless input also needs all of these flags (before the path):

    -format=bc1 (or bc1a, bc2, bc3, dxt1, dxt1a, dxt3, dxt5)
    -width=123
    -height=456

You can also pass one of these flags (before the path):

    -output=bmp
    -output=dds (wraps a headerless block stream; no decoding)
    -output=nie-bn4
    -output=nie-bn8
    -output=png (this is the default)
    -output=rgb888 (headerless, row-major, 3 bytes per pixel)
    -output=rgba8888 (headerless, row-major, 4 bytes per pixel)
    -output=tiff

Pass -info to print the input's format and dimensions, as YAML, instead of
decoding it. Pass -j=N to limit decoding to N goroutines.

The output is written to stdout.
`

var ErrBadOutputFlag = errors.New("main: bad -output flag")

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	c := config{
		output:  *outputFlag,
		info:    *infoFlag,
		options: &s3tc.DecodeOptions{Concurrency: *jFlag},
	}
	if *formatFlag != "" {
		f, err := s3tc.ParseFormat(*formatFlag)
		if err != nil {
			return errors.Wrapf(err, "main: bad -format flag %q", *formatFlag)
		}
		c.raw = &texload.Raw{Format: f, Width: *widthFlag, Height: *heightFlag}
	}

	src, err := io.ReadAll(inFile)
	if err != nil {
		return err
	}
	return run(os.Stdout, src, c)
}

type config struct {
	output  string
	info    bool
	raw     *texload.Raw
	options *s3tc.DecodeOptions
}

// report is what -info prints.
type report struct {
	Container  string `yaml:"container"`
	Format     string `yaml:"format"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	BlocksWide int    `yaml:"blocksWide"`
	BlocksHigh int    `yaml:"blocksHigh"`
	AlphaModel string `yaml:"alphaModel"`
	Bytes      int    `yaml:"bytes"`
	GLFormat   string `yaml:"glInternalFormat"`

	FourCC      string `yaml:"fourCC,omitempty"`
	DXGIFormat  uint32 `yaml:"dxgiFormat,omitempty"`
	MipMapCount uint32 `yaml:"mipMapCount,omitempty"`
}

func run(w io.Writer, src []byte, c config) error {
	switch c.output {
	case "", "bmp", "dds", "nie-bn4", "nie-bn8", "png", "rgb888", "rgba8888", "tiff":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	src, err := texload.Unwrap(src, 0)
	if err != nil {
		return err
	}
	blocks, desc, h, err := texload.Split(src, c.raw)
	if err != nil {
		return err
	}

	if c.info {
		return writeReport(w, desc, h)
	}

	switch c.output {
	case "dds":
		if h != nil {
			return errors.New("main: -output=dds needs headerless input")
		}
		n := desc.Format.EncodedLen(desc.Width, desc.Height)
		if len(blocks) < n {
			return errors.Wrapf(s3tc.ErrTruncatedInput, "main: have %d bytes, need %d", len(blocks), n)
		}
		blocks = blocks[:n]
		if err := dds.WriteHeader(w, desc.Format, desc.Width, desc.Height); err != nil {
			return err
		}
		_, err := w.Write(blocks)
		return err

	case "rgb888", "rgba8888":
		layout := s3tc.LayoutRGBA8888
		if c.output == "rgb888" {
			layout = s3tc.LayoutRGB888
		}
		dst := make([]byte, desc.Width*desc.Height*layout.BytesPerPixel())
		if err := desc.Format.DecodeRaster(dst, blocks, desc.Width, desc.Height, layout, c.options); err != nil {
			return errors.Wrapf(err, "main: decoding %dx%d %v", desc.Width, desc.Height, desc.Format)
		}
		_, err := w.Write(dst)
		return err
	}

	m, err := s3tc.DecodeImageWithOptions(blocks, desc.Format, desc.Width, desc.Height, c.options)
	if err != nil {
		return errors.Wrapf(err, "main: decoding %dx%d %v", desc.Width, desc.Height, desc.Format)
	}
	return encode(w, m, c.output)
}

func encode(w io.Writer, m image.Image, output string) error {
	switch output {
	case "bmp":
		return bmp.Encode(w, m)
	case "tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	case "nie-bn4", "nie-bn8":
		encodeNIE := nie.EncodeBN8
		if output == "nie-bn4" {
			encodeNIE = nie.EncodeBN4
		}
		dst, err := encodeNIE(m)
		if err != nil {
			return err
		}
		_, err = w.Write(dst)
		return err
	}
	return png.Encode(w, m)
}

func writeReport(w io.Writer, desc texload.Raw, h *dds.Header) error {
	r := report{
		Container:  "raw",
		Format:     desc.Format.String(),
		Width:      desc.Width,
		Height:     desc.Height,
		BlocksWide: (desc.Width + 3) / 4,
		BlocksHigh: (desc.Height + 3) / 4,
		AlphaModel: alphaModelName(desc.Format.AlphaModel()),
		Bytes:      desc.Format.EncodedLen(desc.Width, desc.Height),
		GLFormat:   fmt.Sprintf("0x%04X", desc.Format.OpenGLInternalFormat()),
	}
	if h != nil {
		r.Container = "dds"
		r.FourCC = h.FourCC
		r.DXGIFormat = h.DXGIFormat
		r.MipMapCount = h.MipMapCount
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&r); err != nil {
		return errors.Wrap(err, "main: encoding yaml")
	}
	return enc.Close()
}

func alphaModelName(a s3tc.AlphaModel) string {
	switch a {
	case s3tc.AlphaModelOpaque:
		return "opaque"
	case s3tc.AlphaModel1Bit:
		return "1-bit"
	case s3tc.AlphaModel4Bit:
		return "4-bit"
	case s3tc.AlphaModel8Bit:
		return "8-bit"
	}
	return "unknown"
}
