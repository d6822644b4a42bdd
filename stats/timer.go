package stats

import "time"

// Timer measures the duration of one operation using the monotonic clock.
type Timer struct {
	start   time.Time
	frozen  time.Duration
	started bool
	running bool
}

// StartTimer returns a running Timer.
func StartTimer() Timer {
	var t Timer
	t.Start()

	return t
}

// Start (re)starts the timer.
func (t *Timer) Start() {
	t.start = time.Now()
	t.frozen = 0
	t.started = true
	t.running = true
}

// Stop freezes the timer and returns the elapsed duration. Stopping a timer
// that was never started returns 0.
func (t *Timer) Stop() time.Duration {
	if !t.running {
		return t.frozen
	}
	t.frozen = time.Since(t.start)
	t.running = false

	return t.frozen
}

// Elapsed returns the time since Start, the frozen value after Stop, or 0 if
// the timer was never started.
func (t *Timer) Elapsed() time.Duration {
	switch {
	case !t.started:
		return 0
	case t.running:
		return time.Since(t.start)
	default:
		return t.frozen
	}
}

// Running reports whether the timer has been started and not stopped.
func (t *Timer) Running() bool {
	return t.running
}

// IncompleteMessage is recorded by RecordingScope.Close when an operation never
// reported its outcome.
const IncompleteMessage = "Operation not completed"

// RecordingScope times one operation and guarantees that exactly one record is
// sent to its Manager.
type RecordingScope struct {
	manager  *Manager
	name     string
	version  string
	op       Operation
	timer    Timer
	input    uint64
	output   uint64
	recorded bool
}

// NewScope starts timing an operation for the given backend identity.
func (m *Manager) NewScope(name, version string, op Operation) *RecordingScope {
	return &RecordingScope{
		manager: m,
		name:    name,
		version: version,
		op:      op,
		timer:   StartTimer(),
	}
}

// SetSizes records the byte counts observed so far.
func (s *RecordingScope) SetSizes(input, output int) {
	s.input = uint64(input)
	s.output = uint64(output)
}

// SetSuccess stops the timer and records the outcome. Only the first call has
// any effect.
func (s *RecordingScope) SetSuccess(success bool, message string) {
	if s.recorded {
		return
	}
	s.recorded = true

	s.manager.Record(s.op, s.name, s.version, OperationStats{
		InputSize:    s.input,
		OutputSize:   s.output,
		Duration:     s.timer.Stop(),
		Success:      success,
		ErrorMessage: message,
	})
}

// Recorded reports whether the scope has already emitted its record.
func (s *RecordingScope) Recorded() bool {
	return s.recorded
}

// Close records a failure with IncompleteMessage unless SetSuccess already ran.
// It is intended to be deferred right after NewScope.
func (s *RecordingScope) Close() {
	if !s.recorded {
		s.SetSuccess(false, IncompleteMessage)
	}
}
