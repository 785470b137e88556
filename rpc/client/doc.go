// Package client implements the pooled RPC client handle and the typed service stubs
// that are used through it.
//
// Key Components:
//
//   - RPCClient: A handle that satisfies pool.IPooledClient. It owns exactly one
//     transport connection and a typed stub S. Connect is idempotent, a failed Connect
//     leaves the handle disconnected and reusable. KeepAliveTimeout retries Connect
//     until it succeeds or the timeout elapses.
//
//   - NewFactory: Returns the pool.Factory that a pool.ClientPool uses to create handles.
//     Creating a handle performs no network I/O.
//
//   - IComposeReviewService / ComposeReviewStub: The typed stub of the compose-review
//     service, exposed through RPCClient.GetClient.
//
// Error Classification:
//
//	Every stub method returns either nil, a fault.KindTransport error (the connection is
//	broken and closed, IsConnected reports false) or a fault.KindApplication error (the
//	service rejected the request, the connection stays usable).
//
// Usage Example:
//
//	factory := client.NewFactory(
//	  "compose-review",
//	  common.ClientConfig{TimeoutSecond: 5, KeepaliveMs: 60000},
//	  tcp.NewTCPClientTransport,
//	  serializer.NewBinarySerializer(),
//	  client.ComposeReviewStub(common.ServiceIDComposeReview),
//	)
//
//	p, _ := pool.NewClientPool(pool.Config{ClientKind: "compose-review", Address: "localhost", Port: 9090,
//	  MinSize: 2, MaxSize: 8, AcquireTimeout: time.Second}, factory)
//
//	handle, _ := p.Pop()
//	err := handle.GetClient().UploadText(1, "a great movie")
//	p.Keepalive(handle)
//
// Thread Safety:
//
//	A handle and its stub are used by one goroutine at a time, the pool guarantees
//	exclusive ownership of checked out handles.
package client
