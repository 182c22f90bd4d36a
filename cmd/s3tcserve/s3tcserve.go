// Copyright 2025 The S3tc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// s3tcserve is an HTTP service that decodes S3TC compressed textures to PNG.
package main

import (
	"flag"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nigeltao/s3tc/internal/texload"
	"github.com/nigeltao/s3tc/lib/dds"
	"github.com/nigeltao/s3tc/lib/s3tc"
)

var (
	addrFlag     = flag.String("addr", "localhost:8080", "address to listen on")
	jFlag        = flag.Int("j", 0, "maximum number of decoding goroutines per request; 0 means GOMAXPROCS")
	maxBytesFlag = flag.Int64("maxbytes", 64<<20, "maximum request body size")
)

const usageStr = `s3tcserve is an HTTP service that decodes S3TC compressed textures to PNG.

Usage:

    s3tcserve [-addr=localhost:8080] [-j=N] [-maxbytes=N]

The -maxbytes limit applies to the request body both before and after zstd
decompression.

Endpoints:

    POST /decode
        The body is a DDS file, optionally zstd compressed.

    POST /decode/{format}/{width}/{height}
        The body is a headerless block stream, optionally zstd compressed.
        The format is bc1, bc1a, bc2 or bc3 (or dxt1, dxt1a, dxt3, dxt5).

Both respond with a PNG image.
`

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("s3tcserve takes no arguments")
	}

	h := newHandler(os.Stdout, &s3tc.DecodeOptions{Concurrency: *jFlag}, *maxBytesFlag)
	log.Printf("[web] Starting server %v", *addrFlag)
	return http.ListenAndServe(*addrFlag, h)
}

type server struct {
	options  *s3tc.DecodeOptions
	maxBytes int64
}

// newHandler returns the service's routes, wrapped in request logging (to
// logOut) and panic recovery.
func newHandler(logOut io.Writer, options *s3tc.DecodeOptions, maxBytes int64) http.Handler {
	s := &server{options: options, maxBytes: maxBytes}

	r := mux.NewRouter()
	r.HandleFunc("/decode", s.handleDecode).Methods(http.MethodPost)
	r.HandleFunc("/decode/{format}/{width:[0-9]+}/{height:[0-9]+}", s.handleDecodeRaw).Methods(http.MethodPost)

	h := handlers.RecoveryHandler()(r)
	return handlers.LoggingHandler(logOut, h)
}

func (s *server) handleDecode(w http.ResponseWriter, r *http.Request) {
	s.decode(w, r, nil)
}

func (s *server) handleDecodeRaw(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	f, err := s3tc.ParseFormat(vars["format"])
	if err != nil {
		writeError(w, errors.Wrapf(err, "format %q", vars["format"]))
		return
	}
	width, err := strconv.Atoi(vars["width"])
	if err != nil {
		writeError(w, errors.Wrap(s3tc.ErrBadArgument, "width"))
		return
	}
	height, err := strconv.Atoi(vars["height"])
	if err != nil {
		writeError(w, errors.Wrap(s3tc.ErrBadArgument, "height"))
		return
	}
	s.decode(w, r, &texload.Raw{Format: f, Width: width, Height: height})
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, raw *texload.Raw) {
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		writeError(w, errors.Wrap(err, "reading request body"))
		return
	}
	if (raw == nil) && !texload.IsDDS(src) && !texload.IsZstd(src) {
		writeError(w, dds.ErrNotADDSFile)
		return
	}

	m, _, err := texload.Load(src, raw, s.maxBytes, s.options)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, m); err != nil {
		log.Printf("[web] Error encoding png: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	log.Printf("[web] Error decoding: %v", err)
	http.Error(w, err.Error(), statusCode(err))
}

func statusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr),
		errors.Is(err, texload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, s3tc.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, s3tc.ErrBadArgument),
		errors.Is(err, s3tc.ErrTruncatedInput),
		errors.Is(err, dds.ErrNotADDSFile),
		errors.Is(err, dds.ErrImageIsTooLarge),
		errors.Is(err, texload.ErrMissingRawParams):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
