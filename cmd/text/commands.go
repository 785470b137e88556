package text

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	uploadCmd = &cobra.Command{
		Use:   "upload [req-id] [text]",
		Short: "Uploads the text of a review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqID, err := parseReqID(args[0])
			if err != nil {
				return err
			}
			if err := handler.UploadText(cmd.Context(), reqID, args[1]); err != nil {
				return err
			}
			fmt.Println("uploaded successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [req-id]",
		Short: "Gets the review of a request from the compose-review service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqID, err := parseReqID(args[0])
			if err != nil {
				return err
			}
			review, complete, err := handler.GetReview(cmd.Context(), reqID)
			if err != nil {
				return err
			}
			fmt.Printf("review:   %d\n", review.ReviewID)
			fmt.Printf("movie:    %s\n", review.MovieID)
			fmt.Printf("rating:   %d\n", review.Rating)
			fmt.Printf("text:     %s\n", review.Text)
			fmt.Printf("complete: %t\n", complete)
			return nil
		},
	}
)

func parseReqID(value string) (int64, error) {
	reqID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("req-id must be a number: %w", err)
	}
	return reqID, nil
}
