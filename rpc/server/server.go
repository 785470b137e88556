package server

import (
	"fmt"
	"net"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/serializer"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("server")

// serverService is a service hosted by the RPC server under a service id
type serverService struct {
	Type    common.ServiceType
	Adapter IRPCServerAdapter
}

// RPCServer hosts the configured services on a transport
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	services   *xsync.MapOf[uint64, serverService]

	// composeReview is the first compose-review service, exposed by the admin server
	composeReview *ComposeReviewAdapter

	metrics *metrics.Set       // request and error counters (Prometheus)
	timers  gometrics.Registry // per request type latency timers
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Start(); err != nil {
//		panic(err)
//	}
//	go s.Serve()
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		services:   xsync.NewMapOf[uint64, serverService](),
		metrics:    metrics.NewSet(),
		timers:     gometrics.NewRegistry(),
	}
}

// Start creates the services and binds the transport listener
func (s *RPCServer) Start() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Serve accepts connections until Close is called
func (s *RPCServer) Serve() error {
	return s.transport.Serve()
}

// Addr returns the address the transport listens on, nil before Start
func (s *RPCServer) Addr() net.Addr {
	return s.transport.Addr()
}

// Close stops the transport and closes all client connections
func (s *RPCServer) Close() error {
	return s.transport.Close()
}

// ComposeReview returns the compose-review service, nil if none is configured
func (s *RPCServer) ComposeReview() *ComposeReviewAdapter {
	return s.composeReview
}

// Metrics returns the Prometheus metrics of the server
func (s *RPCServer) Metrics() *metrics.Set {
	return s.metrics
}

// Timers returns the latency timers of the server
func (s *RPCServer) Timers() gometrics.Registry {
	return s.timers
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *RPCServer) init() error {
	if len(s.config.Services) == 0 {
		return fmt.Errorf("no services configured")
	}

	for _, serviceConfig := range s.config.Services {
		if _, exists := s.services.Load(serviceConfig.ServiceID); exists {
			return fmt.Errorf("duplicate service id %d", serviceConfig.ServiceID)
		}

		switch serviceConfig.Type {
		case common.ServiceTypeComposeReview:
			adapter := NewComposeReviewAdapter()
			if s.composeReview == nil {
				s.composeReview = adapter
				s.metrics.NewGauge(fmt.Sprintf(`dpool_compose_review_reviews{service_id="%d"}`, serviceConfig.ServiceID),
					func() float64 { return float64(adapter.Len()) })
			}
			s.services.Store(serviceConfig.ServiceID, serverService{Type: serviceConfig.Type, Adapter: adapter})
			Logger.Infof("created %s service with id %d", serviceConfig.Type, serviceConfig.ServiceID)
		default:
			return fmt.Errorf("invalid service type: %s", serviceConfig.Type)
		}
	}

	s.transport.RegisterHandler(s.handle)
	return nil
}

// handle is the transport handler, it routes a request to the service with the given id
func (s *RPCServer) handle(serviceID uint64, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	service, ok := s.services.Load(serviceID)
	if !ok {
		respMsg = common.NewErrorResponse(common.ErrCodeNotFound, fmt.Sprintf("service %d not found", serviceID))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(common.ErrCodeBadRequest, fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		start := time.Now()
		respMsg = service.Adapter.Handle(&msg)
		gometrics.GetOrRegisterTimer(fmt.Sprintf("%s.%s", service.Type, msg.MsgType), s.timers).UpdateSince(start)
		s.metrics.GetOrCreateCounter(
			fmt.Sprintf(`dpool_server_requests_total{service=%q,type=%q}`, service.Type, msg.MsgType)).Inc()
	}

	if respMsg.Err != "" {
		s.metrics.GetOrCreateCounter(fmt.Sprintf(`dpool_server_errors_total{code=%q}`, respMsg.ErrCode)).Inc()
		Logger.Debugf("request for service %d failed: %s", serviceID, respMsg.Err)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(common.ErrCodeHandlerError,
			fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}
