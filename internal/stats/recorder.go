// Package stats summarises call latencies and outcomes.
package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/impaktor/pkg/impaktor"
)

const (
	minLatency = time.Microsecond
	maxLatency = 10 * time.Minute
	sigFigs    = 3
)

// Recorder collects call latencies in an HDR histogram (microsecond
// resolution) together with outcome and status counts. It implements
// impaktor.Observer.
type Recorder struct {
	mu       sync.Mutex
	hist     *hdrhistogram.Histogram
	classes  map[impaktor.Class]int64
	statuses map[int]int64
	start    time.Time
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:     hdrhistogram.New(int64(minLatency/time.Microsecond), int64(maxLatency/time.Microsecond), sigFigs),
		classes:  make(map[impaktor.Class]int64),
		statuses: make(map[int]int64),
		start:    time.Now(),
	}
}

func (r *Recorder) CallStarted(impaktor.Verb, string) {}

// CallFinished records one resolved call. Latencies outside the histogram's
// range are clamped.
func (r *Recorder) CallFinished(_ impaktor.Verb, _ string, class impaktor.Class, status int, d time.Duration) {
	us := int64(d / time.Microsecond)
	if us < r.hist.LowestTrackableValue() {
		us = r.hist.LowestTrackableValue()
	}
	if us > r.hist.HighestTrackableValue() {
		us = r.hist.HighestTrackableValue()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.hist.RecordValue(us)
	r.classes[class]++
	if status != 0 {
		r.statuses[status]++
	}
}

// Summary is a point-in-time view of a Recorder.
type Summary struct {
	Total    int64
	Classes  map[impaktor.Class]int64
	Statuses map[int]int64
	Elapsed  time.Duration

	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P95  time.Duration
	P99  time.Duration
}

// SuccessRate is the share of calls that resolved to a success, in percent.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Classes[impaktor.ClassSuccess]) / float64(s.Total) * 100
}

// Summary returns the current statistics.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Total:    r.hist.TotalCount(),
		Classes:  make(map[impaktor.Class]int64, len(r.classes)),
		Statuses: make(map[int]int64, len(r.statuses)),
		Elapsed:  time.Since(r.start),
	}
	for k, v := range r.classes {
		s.Classes[k] = v
	}
	for k, v := range r.statuses {
		s.Statuses[k] = v
	}
	if s.Total == 0 {
		return s
	}

	s.Min = micros(r.hist.Min())
	s.Max = micros(r.hist.Max())
	s.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P90 = micros(r.hist.ValueAtQuantile(90))
	s.P95 = micros(r.hist.ValueAtQuantile(95))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	return s
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// WriteTo renders s as a plain-text report.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var n int64
	write := func(format string, args ...any) error {
		m, err := fmt.Fprintf(w, format, args...)
		n += int64(m)
		return err
	}

	if err := write("calls:        %d in %s (%.1f%% success)\n", s.Total, s.Elapsed.Round(time.Millisecond), s.SuccessRate()); err != nil {
		return n, err
	}

	classes := make([]string, 0, len(s.Classes))
	for c := range s.Classes {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)
	for _, c := range classes {
		if err := write("  %-14s %d\n", c, s.Classes[impaktor.Class(c)]); err != nil {
			return n, err
		}
	}

	codes := make([]int, 0, len(s.Statuses))
	for code := range s.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		if err := write("  HTTP %-9d %d\n", code, s.Statuses[code]); err != nil {
			return n, err
		}
	}

	if s.Total == 0 {
		return n, nil
	}
	err := write("latency:      min %s  mean %s  max %s\n  p50 %s  p90 %s  p95 %s  p99 %s\n",
		s.Min, s.Mean.Round(time.Microsecond), s.Max, s.P50, s.P90, s.P95, s.P99)
	return n, err
}
