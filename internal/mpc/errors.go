package mpc

import "errors"

// ErrHorizonMismatch indicates a reference trajectory whose length differs
// from the controller's prediction horizon.
var ErrHorizonMismatch = errors.New("mpc: reference length does not match horizon")
