package client

import (
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/serializer"
	"github.com/ValentinKolb/dPool/rpc/transport"
)

// IComposeReviewService is the client side of the compose-review service.
// A review is composed from independent uploads that share a request id.
type IComposeReviewService interface {
	// UploadText uploads the text of the review
	UploadText(reqID int64, text string) error
	// UploadRating uploads the rating of the review
	UploadRating(reqID int64, rating int32) error
	// UploadMovieID uploads the id of the reviewed movie
	UploadMovieID(reqID int64, movieID string) error
	// UploadUniqueID uploads the unique id of the review
	UploadUniqueID(reqID int64, reviewID int64) error
	// GetReview returns the review state for a request id and whether all parts were uploaded
	GetReview(reqID int64) (review common.Review, complete bool, err error)
	// Ping checks that the service answers on this connection
	Ping() error
}

// ComposeReviewStub returns the StubFactory for the compose-review service hosted under serviceID
func ComposeReviewStub(serviceID uint64) StubFactory[IComposeReviewService] {
	return func(transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) IComposeReviewService {
		return &composeReviewStub{
			rpcClientAdapter{
				serviceID:  serviceID,
				name:       string(common.ServiceTypeComposeReview),
				transport:  transport,
				serializer: serializer,
			},
		}
	}
}

type composeReviewStub struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IComposeReviewService)
// --------------------------------------------------------------------------

func (s *composeReviewStub) UploadText(reqID int64, text string) error {
	_, err := s.invokeRPCRequest("UploadText", common.NewUploadTextRequest(reqID, text))
	return err
}

func (s *composeReviewStub) UploadRating(reqID int64, rating int32) error {
	_, err := s.invokeRPCRequest("UploadRating", common.NewUploadRatingRequest(reqID, rating))
	return err
}

func (s *composeReviewStub) UploadMovieID(reqID int64, movieID string) error {
	_, err := s.invokeRPCRequest("UploadMovieID", common.NewUploadMovieIDRequest(reqID, movieID))
	return err
}

func (s *composeReviewStub) UploadUniqueID(reqID int64, reviewID int64) error {
	_, err := s.invokeRPCRequest("UploadUniqueID", common.NewUploadUniqueIDRequest(reqID, reviewID))
	return err
}

func (s *composeReviewStub) GetReview(reqID int64) (common.Review, bool, error) {
	resp, err := s.invokeRPCRequest("GetReview", common.NewGetReviewRequest(reqID))
	if err != nil {
		return common.Review{}, false, err
	}
	return common.Review{
		ReqID:    resp.ReqID,
		ReviewID: resp.ReviewID,
		MovieID:  resp.MovieID,
		Text:     resp.Text,
		Rating:   resp.Rating,
	}, resp.Ok, nil
}

func (s *composeReviewStub) Ping() error {
	_, err := s.invokeRPCRequest("Ping", common.NewPingRequest())
	return err
}
