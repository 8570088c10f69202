package symbols

import (
	"sync/atomic"
	"time"
)

// Clock issues strictly increasing recency stamps in Unix nanoseconds, even
// when the wall clock stalls or steps back.
type Clock struct {
	last atomic.Int64
}

func (c *Clock) Next() int64 {
	for {
		prev := c.last.Load()
		now := time.Now().UnixNano()
		if now <= prev {
			now = prev + 1
		}
		if c.last.CompareAndSwap(prev, now) {
			return now
		}
	}
}
