package text

import (
	"context"
	"errors"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/ValentinKolb/dPool/lib/retry"
	"github.com/ValentinKolb/dPool/rpc/client"
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("text")

// ComposeReviewClient is the pooled handle type of the compose-review service
type ComposeReviewClient = *client.RPCClient[client.IComposeReviewService]

// Handler is the text service. It forwards review texts to the compose-review service
// through a client pool.
type Handler struct {
	composePool retry.IPool[ComposeReviewClient]
	attempts    int
}

// NewHandler creates a text service that calls compose-review through composePool.
// attempts <= 0 uses retry.DefaultAttempts.
func NewHandler(composePool retry.IPool[ComposeReviewClient], attempts int) *Handler {
	return &Handler{
		composePool: composePool,
		attempts:    attempts,
	}
}

// UploadText uploads the text of review reqID to the compose-review service.
//
// Pool timeouts are reported as common.ErrCodeConnPoolTimeout, failures to (re)connect as
// common.ErrCodeConnError and errors of the compose-review service with their own code.
// A transport fault that persists over all attempts is returned as is.
func (h *Handler) UploadText(ctx context.Context, reqID int64, text string) error {
	err := retry.Do(ctx, h.composePool, retry.Options{Attempts: h.attempts, Op: "UploadText"},
		func(c ComposeReviewClient) error {
			return c.GetClient().UploadText(reqID, text)
		})
	if err != nil {
		Logger.Errorf("Failed to upload text of request %d to compose-review-service: %v", reqID, err)
		return serviceError(err)
	}
	return nil
}

// GetReview reads the review of reqID from the compose-review service and reports whether it is complete
func (h *Handler) GetReview(ctx context.Context, reqID int64) (common.Review, bool, error) {
	type result struct {
		review   common.Review
		complete bool
	}

	res, err := retry.Invoke(ctx, h.composePool, retry.Options{Attempts: h.attempts, Op: "GetReview"},
		func(c ComposeReviewClient) (result, error) {
			review, complete, err := c.GetClient().GetReview(reqID)
			return result{review, complete}, err
		})
	if err != nil {
		return common.Review{}, false, serviceError(err)
	}
	return res.review, res.complete, nil
}

// serviceError maps an orchestrator error to the error reported by the text service
func serviceError(err error) error {
	var fe *fault.Error
	switch {
	case errors.Is(err, fault.ErrPoolTimeout):
		return &common.ServiceError{Code: common.ErrCodeConnPoolTimeout, Message: "Failed to connect to compose-review-service", Err: err}
	case fault.KindOf(err) == fault.KindConnection:
		msg := "Failed to connect to compose-review-service"
		if retry.IsReconnectFailure(err) {
			msg = "Failed to reconnect to compose-review-service"
		}
		return &common.ServiceError{Code: common.ErrCodeConnError, Message: msg, Err: err}
	case errors.As(err, &fe) && fe.Kind == fault.KindApplication:
		return &common.ServiceError{Code: common.ErrorCode(fe.Code), Message: fe.Msg, Err: err}
	default:
		return err
	}
}
