package logic

// Decimator selects every Nth cycle for publishing.
type Decimator struct {
	period int
	count  int
}

// NewDecimator creates a Decimator that fires once every period cycles.
func NewDecimator(period int) *Decimator {
	if period < 1 {
		period = 1
	}
	return &Decimator{period: period}
}

// Tick advances by one cycle and reports whether this cycle is a publish
// boundary. The counter wraps to zero on the boundary.
func (d *Decimator) Tick() bool {
	d.count++
	if d.count >= d.period {
		d.count = 0
		return true
	}
	return false
}

// Count returns the cycles since the last boundary.
func (d *Decimator) Count() int { return d.count }

// ReconnectTimer paces reconnect attempts while the transport is down.
type ReconnectTimer struct {
	interval int
	count    int
	attempts int
}

// NewReconnectTimer creates a timer that fires every interval disconnected cycles.
func NewReconnectTimer(interval int) *ReconnectTimer {
	if interval < 1 {
		interval = 1
	}
	return &ReconnectTimer{interval: interval}
}

// Tick counts one disconnected cycle and reports whether to attempt a
// reconnect now. The count resets on every attempt, whatever its outcome.
func (t *ReconnectTimer) Tick() bool {
	t.count++
	if t.count >= t.interval {
		t.count = 0
		t.attempts++
		return true
	}
	return false
}

// Count returns the disconnected cycles since the last attempt.
func (t *ReconnectTimer) Count() int { return t.count }

// Attempts returns the number of attempts fired since startup.
func (t *ReconnectTimer) Attempts() int { return t.attempts }

// Reset clears a partial count once a session is up, so the next outage
// waits a full interval.
func (t *ReconnectTimer) Reset() { t.count = 0 }
