package engine

import "fmt"

// ValidationError reports an operator input the engine refused. The engine
// state is unchanged when one is returned.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// TransportError reports a failed round trip to the upstream API. The
// previous local state is always retained.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports malformed inbound data (a stream message or a stored
// geometry). Carriers drop the offending item and log; it never propagates
// out of the engine.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.What, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
