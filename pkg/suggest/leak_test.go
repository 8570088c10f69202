//go:build test

package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var leakSources = []string{
	"class A { void f() { Math.m",
	"class A { void f() { \"s\".to",
	"class A { void f() { ArrayList<String> list = new ArrayList<>(); list.s",
	"import java.u",
	"class A extends Obj",
	"class A { void f() { new Arr",
	"class A { void f() { int count = 0; co",
}

func heapAlloc() uint64 {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, iterations := range []int{100, 1000, 2500} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			c := newCompleter(t)
			rebuild(t, c, runtimeJar(t))

			baseline := heapAlloc()
			baselineGoroutines := runtime.NumGoroutine()
			for i := 0; i < iterations; i++ {
				for _, src := range leakSources {
					c.RequestCompletion(src, len(src))
				}
			}
			memDelta := int64(heapAlloc()) - int64(baseline)
			totalOps := iterations * len(leakSources)
			memPerOp := float64(memDelta) / float64(totalOps)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

			t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
				iterations, totalOps, memDelta, memPerOp, goroutineDelta)
			if iterations >= 1000 && memPerOp > 1000 {
				t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}

// Queries keep running while the index is rebuilt underneath them; old
// snapshots must be released once published over.
func TestMemoryStableAcrossRebuilds(t *testing.T) {
	c := newCompleter(t)
	jar := runtimeJar(t)
	rebuild(t, c, jar)

	baseline := heapAlloc()
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				src := leakSources[i%len(leakSources)]
				c.RequestCompletion(src, len(src))
			}
		}()
	}

	maxDelta := int64(0)
	for cycle := 0; cycle < 30; cycle++ {
		rebuild(t, c, jar)
		if cycle%10 == 0 {
			d := int64(heapAlloc()) - int64(baseline)
			if d > maxDelta {
				maxDelta = d
			}
			t.Logf("cycle=%d generation=%d mem_delta=%d", cycle, c.Snapshot().Generation, d)
		}
		time.Sleep(2 * time.Millisecond)
	}
	close(stop)
	wg.Wait()

	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
	if maxDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxDelta)
	}
}
