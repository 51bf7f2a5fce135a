package regrid

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	progressWidth   = 30
	progressRefresh = 100 * time.Millisecond
)

// progressBar redraws one terminal line with the share of output rows done,
// the elapsed time and an estimate of the time left. Workers call Increment
// concurrently; a single goroutine owns the output.
type progressBar struct {
	w     io.Writer
	label string
	total int64
	start time.Time

	rows atomic.Int64
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func newProgressBar(label string, total int64) *progressBar {
	return startProgressBar(os.Stderr, label, total)
}

func startProgressBar(w io.Writer, label string, total int64) *progressBar {
	pb := &progressBar{w: w, label: label, total: total, start: time.Now(), stop: make(chan struct{})}
	pb.wg.Add(1)
	go func() {
		defer pb.wg.Done()
		t := time.NewTicker(progressRefresh)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				pb.draw()
			case <-pb.stop:
				return
			}
		}
	}()
	return pb
}

func (pb *progressBar) Increment() { pb.rows.Add(1) }

// Finish draws the final state and ends the line. Extra calls do nothing.
func (pb *progressBar) Finish() {
	pb.once.Do(func() {
		close(pb.stop)
		pb.wg.Wait()
		pb.draw()
		fmt.Fprintln(pb.w)
	})
}

func (pb *progressBar) draw() {
	done := pb.rows.Load()
	frac := 1.0
	if pb.total > 0 {
		frac = min(float64(done)/float64(pb.total), 1)
	}
	n := int(frac * progressWidth)

	elapsed := time.Since(pb.start)
	eta := "--"
	if done > 0 && done < pb.total {
		left := time.Duration(float64(elapsed) * float64(pb.total-done) / float64(done))
		eta = formatDuration(left)
	} else if done >= pb.total {
		eta = "0s"
	}
	fmt.Fprintf(pb.w, "\r%s [%s%s] %3.0f%% %d/%d rows, %s elapsed, %s left\033[K",
		pb.label, strings.Repeat("#", n), strings.Repeat(".", progressWidth-n),
		frac*100, done, pb.total, formatDuration(elapsed), eta)
}

// formatDuration prints whole seconds as "45s", "1m23s" or "2h05m".
func formatDuration(d time.Duration) string {
	s := int(d / time.Second)
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm%02ds", s/60, s%60)
	}
	return fmt.Sprintf("%dh%02dm", s/3600, s%3600/60)
}
