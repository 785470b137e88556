package tcp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startEchoServer starts a server on a random loopback port that echoes the service id and payload
func startEchoServer(t *testing.T, handler transport.ServerHandleFunc) transport.IRPCServerTransport {
	t.Helper()

	if handler == nil {
		handler = func(serviceID uint64, req []byte) []byte {
			return append([]byte{byte(serviceID)}, req...)
		}
	}

	server := NewTCPServerTransport(4*1024, 2)
	server.RegisterHandler(handler)
	require.NoError(t, server.Listen(common.ServerConfig{
		Endpoint:  "127.0.0.1:0",
		Transport: common.TransportConfig{TCPConf: common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1}},
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, server.Serve())
	}()

	t.Cleanup(func() {
		server.Close()
		<-done
	})
	return server
}

func testClientConfig() common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond:    1,
		ConnectTimeoutMs: 500,
		Transport:        common.TransportConfig{TCPConf: common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1}},
	}
}

func TestSendAndReceive(t *testing.T) {
	server := startEchoServer(t, nil)

	client := NewTCPClientTransport(server.Addr().String(), testClientConfig())
	require.NoError(t, client.Open())
	defer client.Close()

	assert.True(t, client.IsOpen())
	assert.Equal(t, server.Addr().String(), client.Endpoint())

	for i := 0; i < 10; i++ {
		resp, err := client.Send(5, []byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, append([]byte{5}, "hello"...), resp)
	}
}

func TestSendWithoutOpen(t *testing.T) {
	client := NewTCPClientTransport("127.0.0.1:1", testClientConfig())

	assert.False(t, client.IsOpen())
	_, err := client.Send(1, []byte("x"))
	assert.ErrorIs(t, err, transport.ErrNotOpen)
	assert.NoError(t, client.Close())
}

func TestOpenRefused(t *testing.T) {
	// reserve a port and release it, nothing listens there afterwards
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	client := NewTCPClientTransport(addr, testClientConfig())
	assert.Error(t, client.Open())
	assert.False(t, client.IsOpen())
}

func TestSendTimeoutClosesConnection(t *testing.T) {
	release := make(chan struct{})
	server := startEchoServer(t, func(serviceID uint64, req []byte) []byte {
		<-release
		return req
	})
	defer close(release)

	client := NewTCPClientTransport(server.Addr().String(), testClientConfig())
	require.NoError(t, client.Open())

	start := time.Now()
	_, err := client.Send(1, []byte("slow"))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.False(t, client.IsOpen())

	_, err = client.Send(1, []byte("again"))
	assert.ErrorIs(t, err, transport.ErrNotOpen)
}

func TestServerCloseBreaksClient(t *testing.T) {
	server := startEchoServer(t, nil)

	client := NewTCPClientTransport(server.Addr().String(), testClientConfig())
	require.NoError(t, client.Open())

	_, err := client.Send(1, []byte("ok"))
	require.NoError(t, err)

	require.NoError(t, server.Close())

	_, err = client.Send(1, []byte("broken"))
	assert.Error(t, err)
	assert.False(t, client.IsOpen())
}

func TestReopenAfterClose(t *testing.T) {
	server := startEchoServer(t, nil)

	client := NewTCPClientTransport(server.Addr().String(), testClientConfig())
	require.NoError(t, client.Open())
	require.NoError(t, client.Close())
	assert.False(t, client.IsOpen())

	require.NoError(t, client.Open())
	resp, err := client.Send(2, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 'x'}, resp)
}

func TestConcurrentClients(t *testing.T) {
	server := startEchoServer(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := NewTCPClientTransport(server.Addr().String(), testClientConfig())
			if !assert.NoError(t, client.Open()) {
				return
			}
			defer client.Close()

			for j := 0; j < 50; j++ {
				resp, err := client.Send(uint64(i), []byte{byte(j)})
				if assert.NoError(t, err) {
					assert.Equal(t, []byte{byte(i), byte(j)}, resp)
				}
			}
		}(i)
	}
	wg.Wait()
}
