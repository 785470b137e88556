package client

import (
	"fmt"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/serializer"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC stub
// Used by the typed stubs with composition pattern
type rpcClientAdapter struct {
	serviceID  uint64
	name       string
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest sends a request to the service and classifies every failure:
//   - the request could not be sent or the response could not be read: transport fault
//   - the response is not a valid response to the request: transport fault, the connection is closed
//   - the service reported an error: application fault, the connection stays usable
func (a *rpcClientAdapter) invokeRPCRequest(method string, req *common.Message) (*common.Message, error) {
	op := a.name + "." + method

	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to serialize request: %w", op, err)
	}

	respBytes, err := a.transport.Send(a.serviceID, reqBytes)
	if err != nil {
		return nil, fault.Transport(op, err)
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		a.closeTransport()
		return nil, fault.Transport(op, fmt.Errorf("failed to deserialize response: %w", err))
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fault.Application(op, int32(resp.ErrCode), resp.Err)
	}

	if resp.MsgType != req.MsgType {
		a.closeTransport()
		return nil, fault.Transport(op, fmt.Errorf("unexpected message type: %s, expected %s", resp.MsgType, req.MsgType))
	}

	return resp, nil
}

// closeTransport closes a connection that can no longer be trusted
func (a *rpcClientAdapter) closeTransport() {
	if err := a.transport.Close(); err != nil {
		Logger.Warningf("Failed to close %s transport: %v", a.name, err)
	}
}
