package common

import (
	"encoding/json"
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Review fields
	ReqID    int64  `json:"req_id,omitempty"`    // Used for: all upload requests, GetReview
	Text     string `json:"text,omitempty"`      // Used for: UploadText (request), GetReview (response)
	MovieID  string `json:"movie_id,omitempty"`  // Used for: UploadMovieID (request), GetReview (response)
	ReviewID int64  `json:"review_id,omitempty"` // Used for: UploadUniqueID (request), GetReview (response)
	Rating   int32  `json:"rating,omitempty"`    // Used for: UploadRating (request), GetReview (response)

	// Response only fields
	Ok      bool      `json:"ok,omitempty"`       // Used for: GetReview responses (review complete)
	ErrCode ErrorCode `json:"err_code,omitempty"` // Set together with Err
	Err     string    `json:"err,omitempty"`      // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional services
}

// Review is the state of a review composed from the individual uploads of one request
type Review struct {
	ReqID    int64  `json:"req_id"`
	ReviewID int64  `json:"review_id"`
	MovieID  string `json:"movie_id"`
	Text     string `json:"text"`
	Rating   int32  `json:"rating"`
}

// --------------------------------------------------------------------------
// Service errors
// --------------------------------------------------------------------------

// ErrorCode classifies errors reported by a service
type ErrorCode int32

const (
	ErrCodeNone ErrorCode = iota
	ErrCodeConnPoolTimeout
	ErrCodeConnError
	ErrCodeHandlerError
	ErrCodeBadRequest
	ErrCodeNotFound
	ErrCodeUnsupported
)

// String returns the string representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeConnPoolTimeout:
		return "connpool timeout"
	case ErrCodeConnError:
		return "connection error"
	case ErrCodeHandlerError:
		return "handler error"
	case ErrCodeBadRequest:
		return "bad request"
	case ErrCodeNotFound:
		return "not found"
	case ErrCodeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

// ServiceError is the error a service handler reports to its caller
type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(code ErrorCode, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// codeOf returns the ErrorCode of err, ErrCodeHandlerError for errors without a code
func codeOf(err error) ErrorCode {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeHandlerError
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// newResponse creates a response of the given type and sets the error fields
func newResponse(t MessageType, err error) *Message {
	msg := &Message{
		MsgType: t,
	}
	if err != nil {
		msg.Err = err.Error()
		msg.ErrCode = codeOf(err)
	}
	return msg
}

// NewPingRequest creates a new Ping request
func NewPingRequest() *Message {
	return &Message{MsgType: MsgTPing}
}

// NewPingResponse creates a new Ping response
func NewPingResponse() *Message {
	return newResponse(MsgTPing, nil)
}

// NewUploadTextRequest creates a new UploadText request
func NewUploadTextRequest(reqID int64, text string) *Message {
	return &Message{
		MsgType: MsgTUploadText,
		ReqID:   reqID,
		Text:    text,
	}
}

// NewUploadRatingRequest creates a new UploadRating request
func NewUploadRatingRequest(reqID int64, rating int32) *Message {
	return &Message{
		MsgType: MsgTUploadRating,
		ReqID:   reqID,
		Rating:  rating,
	}
}

// NewUploadMovieIDRequest creates a new UploadMovieID request
func NewUploadMovieIDRequest(reqID int64, movieID string) *Message {
	return &Message{
		MsgType: MsgTUploadMovieID,
		ReqID:   reqID,
		MovieID: movieID,
	}
}

// NewUploadUniqueIDRequest creates a new UploadUniqueID request
func NewUploadUniqueIDRequest(reqID int64, reviewID int64) *Message {
	return &Message{
		MsgType:  MsgTUploadUniqueID,
		ReqID:    reqID,
		ReviewID: reviewID,
	}
}

// NewUploadResponse creates the response to any of the upload requests
func NewUploadResponse(t MessageType, err error) *Message {
	return newResponse(t, err)
}

// NewGetReviewRequest creates a new GetReview request
func NewGetReviewRequest(reqID int64) *Message {
	return &Message{
		MsgType: MsgTGetReview,
		ReqID:   reqID,
	}
}

// NewGetReviewResponse creates a new GetReview response, ok reports whether the review is complete
func NewGetReviewResponse(review Review, ok bool, err error) *Message {
	msg := newResponse(MsgTGetReview, err)
	if err == nil {
		msg.ReqID = review.ReqID
		msg.ReviewID = review.ReviewID
		msg.MovieID = review.MovieID
		msg.Text = review.Text
		msg.Rating = review.Rating
		msg.Ok = ok
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code ErrorCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		ErrCode: code,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTSuccess:
		return "success"
	case MsgTError:
		return "error"
	case MsgTPing:
		return "ping"
	case MsgTUploadText:
		return "uploadText"
	case MsgTUploadRating:
		return "uploadRating"
	case MsgTUploadMovieID:
		return "uploadMovieId"
	case MsgTUploadUniqueID:
		return "uploadUniqueId"
	case MsgTGetReview:
		return "getReview"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	for candidate := MsgTSuccess; candidate <= MsgTGetReview; candidate++ {
		if candidate.String() == s {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred
	MsgTPing                // Liveness check

	// ComposeReview operations

	MsgTUploadText     // Upload the text of a review
	MsgTUploadRating   // Upload the rating of a review
	MsgTUploadMovieID  // Upload the movie id of a review
	MsgTUploadUniqueID // Upload the unique review id
	MsgTGetReview      // Read the composed review
)
