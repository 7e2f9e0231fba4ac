// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake growth providers for pool testing.

package fake

import "sync"

// NullProvider always declines: it stands in for an exhausted upstream
// memory source. Assignable to api.Provider.
func NullProvider(size, align int) []byte {
	return nil
}

// CountingProvider hands out scripted blocks in order and records every
// request. Once the script is exhausted it declines like NullProvider.
type CountingProvider struct {
	mu        sync.Mutex
	blocks    [][]byte
	calls     int
	lastSize  int
	lastAlign int
}

// NewCountingProvider creates a provider scripted with the given blocks.
func NewCountingProvider(blocks ...[]byte) *CountingProvider {
	return &CountingProvider{blocks: blocks}
}

// Provide implements the provider capability. Assignable to api.Provider
// as a method value.
func (p *CountingProvider) Provide(size, align int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastSize = size
	p.lastAlign = align
	if len(p.blocks) == 0 {
		return nil
	}
	b := p.blocks[0]
	p.blocks = p.blocks[1:]
	return b
}

// Calls reports how many times Provide was invoked.
func (p *CountingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastSize reports the size argument of the most recent request.
func (p *CountingProvider) LastSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSize
}

// LastAlign reports the align argument of the most recent request.
func (p *CountingProvider) LastAlign() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAlign
}
