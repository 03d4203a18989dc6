package server

import "errors"

// ErrAlreadyStarted is returned by Start once the listener has been taken
// by an earlier call.
var ErrAlreadyStarted = errors.New("not listening or already started")

// ErrBind wraps failures to create the listening socket.
var ErrBind = errors.New("bind failed")
