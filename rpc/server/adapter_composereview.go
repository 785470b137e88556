package server

import (
	"fmt"
	"unicode/utf8"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// MaxTextLength is the maximum length of a review text in characters
	MaxTextLength = 10000
	// MaxRating is the highest rating a review can have, the lowest is 0
	MaxRating = 10
)

// parts of a review, a review is complete once all of them were uploaded
const (
	partText uint8 = 1 << iota
	partRating
	partMovieID
	partUniqueID

	partAll = partText | partRating | partMovieID | partUniqueID
)

// draft is a review that is being composed
type draft struct {
	review common.Review
	parts  uint8
}

// ComposeReviewAdapter implements the compose-review service.
// The parts of a review arrive as independent uploads that share a request id.
type ComposeReviewAdapter struct {
	drafts *xsync.MapOf[int64, draft]
}

// NewComposeReviewAdapter creates a compose-review service with an empty draft store
func NewComposeReviewAdapter() *ComposeReviewAdapter {
	return &ComposeReviewAdapter{
		drafts: xsync.NewMapOf[int64, draft](),
	}
}

func (a *ComposeReviewAdapter) Handle(req *common.Message) *common.Message {
	switch req.MsgType {
	case common.MsgTPing:
		return common.NewPingResponse()
	case common.MsgTUploadText:
		return common.NewUploadResponse(req.MsgType, a.uploadText(req.ReqID, req.Text))
	case common.MsgTUploadRating:
		return common.NewUploadResponse(req.MsgType, a.uploadRating(req.ReqID, req.Rating))
	case common.MsgTUploadMovieID:
		return common.NewUploadResponse(req.MsgType, a.uploadMovieID(req.ReqID, req.MovieID))
	case common.MsgTUploadUniqueID:
		return common.NewUploadResponse(req.MsgType, a.uploadUniqueID(req.ReqID, req.ReviewID))
	case common.MsgTGetReview:
		review, complete, found := a.Review(req.ReqID)
		if !found {
			return common.NewGetReviewResponse(review, false,
				common.NewServiceError(common.ErrCodeNotFound, "no review for request %d", req.ReqID))
		}
		return common.NewGetReviewResponse(review, complete, nil)
	default:
		return common.NewErrorResponse(common.ErrCodeUnsupported,
			fmt.Sprintf("compose-review: unsupported message type: %s", req.MsgType))
	}
}

// Review returns the review of a request, whether all of its parts were uploaded and whether it exists at all
func (a *ComposeReviewAdapter) Review(reqID int64) (review common.Review, complete bool, found bool) {
	d, ok := a.drafts.Load(reqID)
	if !ok {
		return common.Review{}, false, false
	}
	return d.review, d.parts == partAll, true
}

// Len returns the number of reviews in the store
func (a *ComposeReviewAdapter) Len() int {
	return a.drafts.Size()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (a *ComposeReviewAdapter) uploadText(reqID int64, text string) error {
	if text == "" {
		return common.NewServiceError(common.ErrCodeBadRequest, "review text must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return common.NewServiceError(common.ErrCodeBadRequest, "review text has %d characters, the maximum is %d", n, MaxTextLength)
	}
	a.update(reqID, partText, func(r *common.Review) { r.Text = text })
	return nil
}

func (a *ComposeReviewAdapter) uploadRating(reqID int64, rating int32) error {
	if rating < 0 || rating > MaxRating {
		return common.NewServiceError(common.ErrCodeBadRequest, "rating %d is out of range [0, %d]", rating, MaxRating)
	}
	a.update(reqID, partRating, func(r *common.Review) { r.Rating = rating })
	return nil
}

func (a *ComposeReviewAdapter) uploadMovieID(reqID int64, movieID string) error {
	if movieID == "" {
		return common.NewServiceError(common.ErrCodeBadRequest, "movie id must not be empty")
	}
	a.update(reqID, partMovieID, func(r *common.Review) { r.MovieID = movieID })
	return nil
}

func (a *ComposeReviewAdapter) uploadUniqueID(reqID int64, reviewID int64) error {
	a.update(reqID, partUniqueID, func(r *common.Review) { r.ReviewID = reviewID })
	return nil
}

// update atomically applies set to the draft of reqID and marks part as uploaded
func (a *ComposeReviewAdapter) update(reqID int64, part uint8, set func(r *common.Review)) {
	a.drafts.Compute(reqID, func(d draft, loaded bool) (draft, bool) {
		if !loaded {
			d.review.ReqID = reqID
		}
		set(&d.review)
		d.parts |= part
		return d, false
	})
}
