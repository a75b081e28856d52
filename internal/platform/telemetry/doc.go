// Package telemetry records operational audit events for ledger calls.
//
// Every entry point invocation produces exactly one event carrying the call
// identifier, operation name, acting address, outcome and the active trace
// identifiers. Events describe calls; they are never read back by the ledger
// and are not part of its key/value state.
package telemetry
