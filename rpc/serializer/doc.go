// Package serializer encodes common.Message, the single request/response type
// exchanged between the pooled compose-review clients and the RPC server.
//
// A Message carries the parts of a review upload (request id, text, movie id,
// unique review id, rating) or the reply to it (ok flag, error code and text).
// Every frame payload on the wire is one serialized Message, the framing itself
// lives in the transport package.
//
// Codecs:
//
//   - binary (NewBinarySerializer): the default. Two header bytes (message type
//     and a presence bitmask) followed by the set fields only. Integers are big
//     endian, strings and Meta are length prefixed with a uint32.
//   - json (NewJSONSerializer): readable payloads, message types are written by name.
//   - gob (NewGOBSerializer): encoding/gob, kept for comparison in the benchmarks.
//
// ByName maps the --serializer flag values to a codec. Client and server must be
// started with the same codec, there is no negotiation.
//
// Deserialize resets the target Message and never keeps references into its input,
// the server transport reuses its read buffers between frames. All codecs are
// stateless and safe for concurrent use.
package serializer
