//go:build linux
// +build linux

// File: pool/pages_linux.go
//
// Package pool: Linux page-backed chunk source using hugepages.
//
// Chunks are mapped via mmap with MAP_HUGETLB for 2 MiB pages.
// Fallback to plain anonymous pages if hugepage allocation fails.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pool/api"
)

const hugePageSize = 2 << 20

// mmapSource maps anonymous pages for chunk carving.
type mmapSource struct{}

// NewPageSource returns the Linux chunk source backed by mmap.
func NewPageSource() (ChunkSource, error) {
	return mmapSource{}, nil
}

// Map rounds the request up to hugepage granularity and attempts a
// MAP_HUGETLB mapping first; plain anonymous pages are the fallback.
func (mmapSource) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool: chunk size %d: %w", size, api.ErrInvalidArgument)
	}
	length := ((size + hugePageSize - 1) / hugePageSize) * hugePageSize
	data, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_HUGETLB)
	if err == nil {
		return data, nil
	}

	pageSize := unix.Getpagesize()
	length = ((size + pageSize - 1) / pageSize) * pageSize
	data, err = unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", length, err)
	}
	return data, nil
}

// Unmap returns page memory to the OS.
func (mmapSource) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
