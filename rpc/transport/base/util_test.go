package base

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("upload review text")
	go func() {
		_ = writeFrame(client, 100, 7, payload)
	}()

	serviceID, requestID, data, err := readFrame(server, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), serviceID)
	assert.Equal(t, uint64(7), requestID)
	assert.Equal(t, payload, data)
}

func TestFrameEmptyPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = writeFrame(client, 1, 2, nil)
	}()

	_, _, data, err := readFrame(server, make([]byte, 64))
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestReadFrameUsesProvidedBuffer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = writeFrame(client, 1, 1, []byte("abc"))
	}()

	buf := make([]byte, 128)
	_, _, data, err := readFrame(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Same(t, &buf[0], &data[0])
}

func TestReadFrameGrowsSmallBuffer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := bytes.Repeat([]byte{'x'}, 100)
	go func() {
		_ = writeFrame(client, 1, 1, payload)
	}()

	_, _, data, err := readFrame(server, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestReadFrameRejectsOversizedFrame(t *testing.T) {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[16:20], maxFrameSize+1)

	_, _, _, err := readFrame(bytes.NewReader(header), nil)
	assert.Error(t, err)
}

func TestReadFrameTruncated(t *testing.T) {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[16:20], 10)

	_, _, _, err := readFrame(bytes.NewReader(append(header, 'a', 'b')), nil)
	assert.Error(t, err)
}
