package serializer

import "github.com/ValentinKolb/dPool/rpc/common"

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters.
	// The result must not reference b, since transports may reuse their buffers.
	Deserialize(b []byte, msg *common.Message) error
}

// ByName returns the serializer for a name (json, gob, binary)
func ByName(name string) (IRPCSerializer, bool) {
	switch name {
	case "json":
		return NewJSONSerializer(), true
	case "gob":
		return NewGOBSerializer(), true
	case "binary":
		return NewBinarySerializer(), true
	default:
		return nil, false
	}
}
