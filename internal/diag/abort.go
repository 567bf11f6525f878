package diag

import "sync/atomic"

// Abort is a cooperative cancellation flag checked at coarse
// granularity by long operations (per grid row in fusion, per
// maneuver window in windest), per spec §5.
type Abort struct {
	flag int32
}

// Set requests abort. Safe to call from any goroutine.
func (a *Abort) Set() {
	if a == nil {
		return
	}
	atomic.StoreInt32(&a.flag, 1)
}

// Requested reports whether abort has been requested. A nil *Abort
// never aborts, so callers may pass nil to mean "run to completion".
func (a *Abort) Requested() bool {
	if a == nil {
		return false
	}
	return atomic.LoadInt32(&a.flag) != 0
}
