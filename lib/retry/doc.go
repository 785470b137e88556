// Package retry implements the acquire-retry orchestrator that request handlers use
// to call a downstream service through a client pool.
//
// A call is attempted at most Options.Attempts times (3 by default). Only transport
// faults are retried, and every retry runs on a freshly acquired handle after the
// broken one was removed from the pool. Application faults are returned at once.
//
//	err := retry.Do(ctx, composePool, retry.Options{Op: "UploadText"},
//	  func(c *client.RPCClient[client.IComposeReviewService]) error {
//	    return c.GetClient().UploadText(reqID, text)
//	  })
//
// Every handle acquired by Invoke is either removed or handed back exactly once.
// Retries and exhausted invocations are counted in dpool_invoke_retries_total and
// dpool_invoke_exhausted_total, labeled with the client kind.
package retry
