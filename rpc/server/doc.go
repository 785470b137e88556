// Package server implements the RPC server that hosts the services pooled clients talk to,
// together with an HTTP admin server.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all service adapters,
//     with the Handle method that turns a request message into a response message.
//
//   - ComposeReviewAdapter: The compose-review service. A review is composed from
//     independent uploads (text, rating, movie id, unique id) that share a request id.
//     Invalid uploads are rejected with ErrCodeBadRequest, unknown requests with
//     ErrCodeNotFound. Both are application errors, the connection stays open.
//
//   - RPCServer: Routes request frames to services by service id. Start binds the
//     transport, Serve accepts connections until Close.
//
//   - AdminServer: chi based HTTP server exposing /healthz, /metrics (Prometheus),
//     /stats (latency timers) and /reviews/{reqID}.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Services: []common.ServerService{
//	    {ServiceID: common.ServiceIDComposeReview, Type: common.ServiceTypeComposeReview},
//	  },
//	  Endpoint:      "0.0.0.0:9090",
//	  TimeoutSecond: 5,
//	}
//
//	s := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Start(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//	go s.Serve()
//
// Thread Safety:
//
//	Requests are processed concurrently across connections. The compose-review draft
//	store updates every review atomically.
package server
