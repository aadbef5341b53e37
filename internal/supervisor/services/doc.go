// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package services adapts Livehub components to suture.Service so the
// supervision tree can run them. Each wrapper accepts an interface rather
// than a concrete type, keeping the wrappers testable with fakes.
package services
