//go:build !linux && !windows
// +build !linux,!windows

// File: pool/pages_stub.go
//
// Package pool: no page-backed chunk source on this platform.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/momentics/hioload-pool/api"

// NewPageSource reports that page-backed chunks are unavailable here;
// callers are expected to fall back to the heap source.
func NewPageSource() (ChunkSource, error) {
	return nil, api.ErrNotSupported
}
