// Package fault defines the error taxonomy shared by the connection pool, the
// retry orchestrator and the RPC clients.
//
// Every failure that crosses a package boundary is a *Error carrying a Kind:
//
//   - KindPoolTimeout: no handle became available within the acquire timeout.
//   - KindConnection: a handle could not be (re)connected.
//   - KindTransport: an RPC failed at the transport level (broken pipe, reset,
//     read/write timeout, corrupted frame). Transport faults are retryable.
//   - KindApplication: the remote service answered with an error. Application
//     faults are never retried.
//   - KindPoolClosed: the pool was closed while the caller used it.
//
// Callers classify errors with errors.Is against the sentinel values
// (ErrPoolTimeout, ErrConnection, ...) or with KindOf / IsRetryable.
package fault
