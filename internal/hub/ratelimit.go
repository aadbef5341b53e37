// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import "time"

// rateWindow is a per-connection fixed-window message budget: N messages
// per window. The counter resets when the window elapses, so exactly the
// (N+1)-th message inside one window is the first rejection.
//
// The caller (Connection.touch) provides the synchronization.
type rateWindow struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
}

func newRateWindow(limit int, window time.Duration) rateWindow {
	return rateWindow{limit: limit, window: window}
}

// allow counts one message at time now and reports whether it is within
// budget. A rejection does not mutate any hub state; it only burns budget
// in the current window.
func (w *rateWindow) allow(now time.Time) bool {
	if now.Sub(w.windowStart) >= w.window {
		w.windowStart = now
		w.count = 0
	}
	w.count++
	return w.count <= w.limit
}
