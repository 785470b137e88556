package server

import (
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeReviewUploadAndGet(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	uploads := []*common.Message{
		common.NewUploadTextRequest(1, "a great movie"),
		common.NewUploadRatingRequest(1, 9),
		common.NewUploadMovieIDRequest(1, "tt0111161"),
	}
	for _, req := range uploads {
		resp := adapter.Handle(req)
		require.Empty(t, resp.Err)
		assert.Equal(t, req.MsgType, resp.MsgType)
	}

	// three of four parts uploaded
	resp := adapter.Handle(common.NewGetReviewRequest(1))
	require.Empty(t, resp.Err)
	assert.False(t, resp.Ok)
	assert.Equal(t, "a great movie", resp.Text)

	resp = adapter.Handle(common.NewUploadUniqueIDRequest(1, 4711))
	require.Empty(t, resp.Err)

	resp = adapter.Handle(common.NewGetReviewRequest(1))
	require.Empty(t, resp.Err)
	assert.True(t, resp.Ok)
	assert.Equal(t, int64(1), resp.ReqID)
	assert.Equal(t, int64(4711), resp.ReviewID)
	assert.Equal(t, "tt0111161", resp.MovieID)
	assert.Equal(t, int32(9), resp.Rating)

	assert.Equal(t, 1, adapter.Len())
}

func TestComposeReviewValidation(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	testCases := []struct {
		name string
		req  *common.Message
	}{
		{"empty text", common.NewUploadTextRequest(1, "")},
		{"text too long", common.NewUploadTextRequest(1, strings.Repeat("x", MaxTextLength+1))},
		{"negative rating", common.NewUploadRatingRequest(1, -1)},
		{"rating too high", common.NewUploadRatingRequest(1, MaxRating+1)},
		{"empty movie id", common.NewUploadMovieIDRequest(1, "")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := adapter.Handle(tc.req)
			assert.NotEmpty(t, resp.Err)
			assert.Equal(t, common.ErrCodeBadRequest, resp.ErrCode)
		})
	}

	// rejected uploads do not create a review
	assert.Equal(t, 0, adapter.Len())
}

func TestComposeReviewTextLengthCountsCharacters(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	resp := adapter.Handle(common.NewUploadTextRequest(1, strings.Repeat("★", MaxTextLength)))
	assert.Empty(t, resp.Err)
}

func TestComposeReviewNotFound(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	resp := adapter.Handle(common.NewGetReviewRequest(42))
	assert.Equal(t, common.ErrCodeNotFound, resp.ErrCode)
	assert.Contains(t, resp.Err, "42")
}

func TestComposeReviewUnsupported(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	resp := adapter.Handle(&common.Message{MsgType: common.MsgTSuccess})
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Equal(t, common.ErrCodeUnsupported, resp.ErrCode)
}

func TestComposeReviewConcurrentUploads(t *testing.T) {
	adapter := NewComposeReviewAdapter()

	var wg sync.WaitGroup
	for reqID := int64(0); reqID < 50; reqID++ {
		reqID := reqID
		wg.Add(4)
		go func() { defer wg.Done(); adapter.Handle(common.NewUploadTextRequest(reqID, "text")) }()
		go func() { defer wg.Done(); adapter.Handle(common.NewUploadRatingRequest(reqID, 5)) }()
		go func() { defer wg.Done(); adapter.Handle(common.NewUploadMovieIDRequest(reqID, "movie")) }()
		go func() { defer wg.Done(); adapter.Handle(common.NewUploadUniqueIDRequest(reqID, reqID*10)) }()
	}
	wg.Wait()

	for reqID := int64(0); reqID < 50; reqID++ {
		review, complete, found := adapter.Review(reqID)
		require.True(t, found)
		assert.True(t, complete, "review %d incomplete", reqID)
		assert.Equal(t, reqID*10, review.ReviewID)
	}
}
