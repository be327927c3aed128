// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import "codeberg.org/dailyfe/dailyfe/core/session"

// UnauthorizedError is a rich error type used to signal that a viewer must be
// signed in to proceed. It carries what the login prompt needs.
//
// The error handling middleware is expected to catch this error, set the HTTP
// status to 401 Unauthorized, and render the login prompt.
type UnauthorizedError struct {
	// Trigger is the action that required signing in.
	Trigger session.Trigger
	// ReturnPath is where the viewer goes after the login flow, whether or not they sign in.
	ReturnPath string
}

// Error implements the error interface. The message is simple, as the primary
// purpose of this type is to carry structured data to the error handler.
func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + string(e.Trigger)
}

// NewUnauthorizedError creates an UnauthorizedError.
//
// Route handlers should return this error if a viewer lacks a session for an
// action that changes their feed. The error handling middleware will then
// render the login prompt.
func NewUnauthorizedError(trigger session.Trigger, returnPath string) error {
	return &UnauthorizedError{
		Trigger:    trigger,
		ReturnPath: returnPath,
	}
}
