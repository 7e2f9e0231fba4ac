package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockFreeQueue_MPMC(t *testing.T) {
	q := NewLockFreeQueue[int](1024)
	producers := 10
	consumers := 10
	itemsPerProducer := 10000

	var wg sync.WaitGroup
	var sentSum int64
	var receivedSum int64

	// Producers
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				val := pid*itemsPerProducer + i + 1
				for !q.Enqueue(val) {
					// busy wait or yield
					runtime.Gosched()
				}
				atomic.AddInt64(&sentSum, int64(val))
			}
		}(p)
	}

	// Consumers
	var receivedCount int64
	totalItems := int64(producers * itemsPerProducer)

	consumerWg := sync.WaitGroup{}
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for {
				if val, ok := q.Dequeue(); ok {
					atomic.AddInt64(&receivedSum, int64(val))
					if atomic.AddInt64(&receivedCount, 1) == totalItems {
						return // All items received (this logic assumes strict unique processing)
					}
				} else {
					if atomic.LoadInt64(&receivedCount) >= totalItems {
						return
					}
					runtime.Gosched()
				}
			}
		}()
	}

	wg.Wait() // Wait for producers

	// Wait for consumers with timeout
	done := make(chan struct{})
	go func() {
		consumerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if sentSum != receivedSum {
			t.Errorf("Checksum mismatch: sent %d, received %d", sentSum, receivedSum)
		}
	case <-time.After(5 * time.Second):
		t.Errorf("Timeout waiting for consumers. Received %d/%d", atomic.LoadInt64(&receivedCount), totalItems)
	}
}

func TestLockFreeQueue_LenCap(t *testing.T) {
	q := NewLockFreeQueue[[]byte](10) // rounds to 16
	if q.Cap() != 16 {
		t.Errorf("Expected capacity 16, got %d", q.Cap())
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got len %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		if !q.Enqueue(make([]byte, 8)) {
			t.Fatalf("Enqueue %d failed on non-full queue", i)
		}
	}
	if q.Len() != 5 {
		t.Errorf("Expected len 5, got %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		if _, ok := q.Dequeue(); !ok {
			t.Fatalf("Dequeue %d failed on non-empty queue", i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on empty queue must report not ok")
	}
}

func TestLockFreeQueue_FullRejects(t *testing.T) {
	q := NewLockFreeQueue[int](2)
	if !q.Enqueue(1) || !q.Enqueue(2) {
		t.Fatal("Expected two enqueues to succeed")
	}
	if q.Enqueue(3) {
		t.Error("Enqueue on full queue must report false")
	}
	if v, ok := q.Dequeue(); !ok || v != 1 {
		t.Errorf("Expected head 1, got %d (ok=%v)", v, ok)
	}
}
