package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dPool/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasReqID    byte = 1 << 0
	hasText     byte = 1 << 1
	hasMovieID  byte = 1 << 2
	hasReviewID byte = 1 << 3
	hasRating   byte = 1 << 4
	hasOk       byte = 1 << 5
	hasErr      byte = 1 << 6
	hasMeta     byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, b.sizeBytes(msg))

	// Header: message type + flags (written last)
	result[0] = byte(msg.MsgType)
	var flags byte
	pos := 2

	if msg.ReqID != 0 {
		flags |= hasReqID
		binary.BigEndian.PutUint64(result[pos:], uint64(msg.ReqID))
		pos += 8
	}

	if msg.Text != "" {
		flags |= hasText
		pos = putBytes(result, pos, []byte(msg.Text))
	}

	if msg.MovieID != "" {
		flags |= hasMovieID
		pos = putBytes(result, pos, []byte(msg.MovieID))
	}

	if msg.ReviewID != 0 {
		flags |= hasReviewID
		binary.BigEndian.PutUint64(result[pos:], uint64(msg.ReviewID))
		pos += 8
	}

	if msg.Rating != 0 {
		flags |= hasRating
		binary.BigEndian.PutUint32(result[pos:], uint32(msg.Rating))
		pos += 4
	}

	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Err and ErrCode are always encoded together
	if msg.Err != "" || msg.ErrCode != common.ErrCodeNone {
		flags |= hasErr
		binary.BigEndian.PutUint32(result[pos:], uint32(msg.ErrCode))
		pos += 4
		pos = putBytes(result, pos, []byte(msg.Err))
	}

	if msg.Meta != nil {
		flags |= hasMeta
		pos = putBytes(result, pos, msg.Meta)
	}

	result[1] = flags
	return result[:pos], nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2
	var err error

	msg.ReqID = 0
	if flags&hasReqID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for ReqID")
		}
		msg.ReqID = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	msg.Text = ""
	if flags&hasText != 0 {
		var text []byte
		if text, pos, err = readBytes(data, pos, "text"); err != nil {
			return err
		}
		msg.Text = string(text)
	}

	msg.MovieID = ""
	if flags&hasMovieID != 0 {
		var movieID []byte
		if movieID, pos, err = readBytes(data, pos, "movie id"); err != nil {
			return err
		}
		msg.MovieID = string(movieID)
	}

	msg.ReviewID = 0
	if flags&hasReviewID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for ReviewID")
		}
		msg.ReviewID = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	msg.Rating = 0
	if flags&hasRating != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for Rating")
		}
		msg.Rating = int32(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
	}

	msg.Ok = false
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos += 1
	}

	msg.ErrCode = common.ErrCodeNone
	msg.Err = ""
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error code")
		}
		msg.ErrCode = common.ErrorCode(int32(binary.BigEndian.Uint32(data[pos : pos+4])))
		pos += 4

		var errMsg []byte
		if errMsg, pos, err = readBytes(data, pos, "error"); err != nil {
			return err
		}
		msg.Err = string(errMsg)
	}

	msg.Meta = nil
	if flags&hasMeta != 0 {
		var meta []byte
		if meta, _, err = readBytes(data, pos, "meta"); err != nil {
			return err
		}
		// copy, data may be a reused buffer; an empty (not nil) slice is preserved
		msg.Meta = append(make([]byte, 0, len(meta)), meta...)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// putBytes writes a 4 byte length prefix followed by value and returns the new position
func putBytes(dst []byte, pos int, value []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(value)))
	pos += 4
	copy(dst[pos:], value)
	return pos + len(value)
}

// readBytes reads a length prefixed field and returns it (not copied) with the new position
func readBytes(data []byte, pos int, field string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if n < 0 || pos+n > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s data", field)
	}
	return data[pos : pos+n], pos + n, nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.ReqID != 0 {
		size += 8
	}
	if msg.Text != "" {
		size += 4 + len(msg.Text)
	}
	if msg.MovieID != "" {
		size += 4 + len(msg.MovieID)
	}
	if msg.ReviewID != 0 {
		size += 8
	}
	if msg.Rating != 0 {
		size += 4
	}
	if msg.Ok {
		size += 1
	}
	if msg.Err != "" || msg.ErrCode != common.ErrCodeNone {
		size += 4 + 4 + len(msg.Err) // code + length + error string
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}
