package base

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint, a timeout of 0 means no timeout
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements a single synchronous connection
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	endpoint      string
	config        common.ClientConfig
	mu            sync.Mutex // Protects conn and nextRequestID
	conn          net.Conn
	nextRequestID uint64
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new, not yet opened client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector, endpoint string, config common.ClientConfig) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
		endpoint:  endpoint,
		config:    config,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Open() error {
	if t.endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeLocked()

	conn, err := t.connector.Connect(t.endpoint, t.config.ConnectTimeout())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.endpoint, err)
	}

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", t.endpoint, err)
	}

	t.conn = conn
	Logger.Debugf("Connected to %s using %s transport", t.endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *clientTransport) Send(serviceID uint64, req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, transport.ErrNotOpen
	}

	t.nextRequestID++
	requestID := t.nextRequestID

	// A zero time clears the deadline of a previous request
	var deadline time.Time
	if timeout := t.config.Timeout(); timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := t.conn.SetDeadline(deadline); err != nil {
		t.closeLocked()
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := writeFrame(t.conn, serviceID, requestID, req); err != nil {
		t.closeLocked()
		return nil, fmt.Errorf("failed to send request to %s: %w", t.endpoint, err)
	}

	// nil buffer: the returned data is owned by the caller
	respServiceID, respRequestID, data, err := readFrame(t.conn, nil)
	if err != nil {
		t.closeLocked()
		return nil, fmt.Errorf("failed to read response from %s: %w", t.endpoint, err)
	}

	// the connection is out of sync, it cannot be reused
	if respRequestID != requestID || respServiceID != serviceID {
		t.closeLocked()
		return nil, fmt.Errorf("response (service %d, request %d) does not match request (service %d, request %d)",
			respServiceID, respRequestID, serviceID, requestID)
	}

	return data, nil
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *clientTransport) Endpoint() string {
	return t.endpoint
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// closeLocked closes the connection, t.mu must be held
func (t *clientTransport) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
