package vm

import "github.com/oil-watt/watt/internal/address"

// RuntimeError is a fatal diagnostic raised by the dispatch loop (spec §7
// "RuntimeError — stack underflow, unknown variable, wrong-kind operand,
// arity mismatch, division by zero, not-a-callable, not-a-container,
// not-a-type, missing trait implementation, invalid error-propagation target").
type RuntimeError struct {
	*address.Diagnostic
}

// NativeError "surfaces as runtime error with address at the call site"
// (spec §7), carried separately so callers can tell a native-originated
// failure from one raised by the dispatch loop itself.
type NativeError struct {
	*address.Diagnostic
}

func runtimeErrf(a address.Address, hint, msg string) error {
	return &RuntimeError{address.NewDiagnostic(address.RuntimeError, a, msg, hint)}
}
