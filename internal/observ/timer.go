// Package observ holds the lightweight per-file phase timing the CLI
// surfaces behind --timings.
package observ

import "time"

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer accumulates the durations of the phases one file passes through.
// It is single-goroutine; every checked file owns its own Timer.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Start opens a phase and returns the function that closes it. The note
// passed on close is attached to the phase, empty notes are dropped from
// serialized output.
func (t *Timer) Start(name string) func(note string) {
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	idx := len(t.phases) - 1
	return func(note string) {
		p := &t.phases[idx]
		p.dur = time.Since(p.start)
		p.note = note
	}
}

// PhaseReport is the serializable form of one timed phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all timed phases of one file.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report renders the closed phases with durations in milliseconds.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	out := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.dur
		out.Phases[i] = PhaseReport{
			Name:       p.name,
			DurationMS: millis(p.dur),
			Note:       p.note,
		}
	}
	out.TotalMS = millis(total)
	return out
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
