// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package services

import "context"

// ContextHub matches *hub.Hub's Serve method without importing the hub
// package, so this wrapper stays free of that dependency.
type ContextHub interface {
	Serve(ctx context.Context) error
}

// HubService wraps the connection hub as a supervised service. The hub's
// Serve already follows the suture.Service contract; the wrapper only adds
// a stable name for supervisor logging.
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates the hub service wrapper.
func NewHubService(h ContextHub) *HubService {
	return &HubService{
		hub:  h,
		name: "connection-hub",
	}
}

// Serve implements suture.Service by delegating to the hub. It returns
// ctx.Err() on normal shutdown.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.Serve(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *HubService) String() string {
	return s.name
}
