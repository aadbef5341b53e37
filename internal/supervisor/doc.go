// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package supervisor builds the suture supervision tree for Livehub.
//
// The tree has two layers under the root: the messaging layer runs the
// connection hub, and the api layer runs the HTTP server. A crash in one
// layer restarts only that layer's services; the layers share failure
// thresholds but fail independently.
package supervisor
