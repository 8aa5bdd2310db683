package storage

import (
	"io"
	"time"

	"github.com/anacrolix/missinggo/v2/panicif"
	"golang.org/x/time/rate"
)

func newReadLimiter(bytesPerSecond int64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(bytesPerSecond), int(max(min(bytesPerSecond, 1<<20), 1<<14)))
}

type rateLimitedReaderAt struct {
	l *rate.Limiter
	r io.ReaderAt
}

// Reads in chunks no larger than the limiter's burst, sleeping after each read until the bytes
// read are allowed.
func (me rateLimitedReaderAt) ReadAt(b []byte, off int64) (n int, err error) {
	for len(b) != 0 {
		chunk := b
		if me.l.Burst() != 0 {
			chunk = b[:min(len(b), me.l.Burst())]
		}
		t := time.Now()
		var n1 int
		n1, err = me.r.ReadAt(chunk, off)
		r := me.l.ReserveN(t, n1)
		panicif.False(r.OK())
		time.Sleep(r.DelayFrom(t))
		n += n1
		off += int64(n1)
		b = b[n1:]
		if err != nil {
			return
		}
	}
	return
}
