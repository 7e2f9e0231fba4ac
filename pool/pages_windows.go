//go:build windows
// +build windows

// File: pool/pages_windows.go
//
// Package pool: Windows page-backed chunk source using VirtualAlloc.
//
// Chunks are committed with MEM_LARGE_PAGES first; fallback to regular
// pages when the large-page privilege is unavailable.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-pool/api"
)

// virtualAllocSource commits pages for chunk carving.
type virtualAllocSource struct{}

// NewPageSource returns the Windows chunk source backed by VirtualAlloc.
func NewPageSource() (ChunkSource, error) {
	return virtualAllocSource{}, nil
}

func (virtualAllocSource) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool: chunk size %d: %w", size, api.ErrInvalidArgument)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT|windows.MEM_LARGE_PAGES,
		windows.PAGE_READWRITE)
	if err != nil {
		addr, err = windows.VirtualAlloc(0, uintptr(size),
			windows.MEM_RESERVE|windows.MEM_COMMIT,
			windows.PAGE_READWRITE)
	}
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc %d bytes: %w", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Unmap releases the whole allocation; MEM_RELEASE requires size zero.
func (virtualAllocSource) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE)
}
