// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package middleware provides HTTP middleware shared by the API surface:
// request id propagation and Prometheus request instrumentation.
package middleware
