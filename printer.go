package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gridplan/atomic_float"
	"gridplan/reinforcement"

	"github.com/gosuri/uilive"
	channerics "github.com/niceyeti/channerics/channels"
)

const statusRefresh = 100 * time.Millisecond

// solveStatus is the latest progress of one solve. It is written by the solving goroutine
// and read by the printer.
type solveStatus struct {
	name         string
	sweeps       atomic.Int64
	improvements atomic.Int64
	delta        *atomic_float.AtomicFloat64
	minDelta     *atomic_float.AtomicFloat64
	done         atomic.Bool
}

func (st *solveStatus) observe(p reinforcement.Progress) {
	st.sweeps.Store(int64(p.Sweep))
	st.improvements.Store(int64(p.Improvement))
	st.delta.Store(p.Delta)
	if p.Sweep > 0 {
		st.minDelta.StoreMin(p.Delta)
	}
	if p.Phase == reinforcement.PHASE_DONE {
		st.done.Store(true)
	}
}

func (st *solveStatus) String() string {
	state := "solving"
	if st.done.Load() {
		state = "done"
	}
	return fmt.Sprintf("%-16s %-7s sweeps=%-6d improvements=%-4d delta=%-10.3g min-delta=%.3g",
		st.name,
		state,
		st.sweeps.Load(),
		st.improvements.Load(),
		st.delta.Load(),
		st.minDelta.Load())
}

// statusPrinter redraws one status line per tracked solve until stopped.
type statusPrinter struct {
	writer    *uilive.Writer
	frequency time.Duration
	statuses  []*solveStatus
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
}

func newStatusPrinter(out io.Writer, frequency time.Duration) *statusPrinter {
	writer := uilive.New()
	writer.Out = out
	return &statusPrinter{
		writer:    writer,
		frequency: frequency,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Track adds a status line and returns the progress callback feeding it.
// All solves must be tracked before Start.
func (p *statusPrinter) Track(name string) reinforcement.ProgressFunc {
	st := &solveStatus{
		name:     name,
		delta:    atomic_float.NewAtomicFloat64(0),
		minDelta: atomic_float.NewAtomicFloat64(math.Inf(1)),
	}
	p.statuses = append(p.statuses, st)
	return st.observe
}

func (p *statusPrinter) Start() {
	go func() {
		defer close(p.stopped)
		for range channerics.NewTicker(p.done, p.frequency) {
			p.print()
		}
		p.print()
	}()
}

// Stop prints the final statuses and waits for the printer to exit.
func (p *statusPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		<-p.stopped
	})
}

func (p *statusPrinter) print() {
	lines := make([]string, 0, len(p.statuses))
	for _, st := range p.statuses {
		lines = append(lines, st.String())
	}
	fmt.Fprintln(p.writer, strings.Join(lines, "\n"))
	p.writer.Flush()
}
