package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	// Review flags
	reviewText  string
	reviewStars int
	reviewImage string
)

// reviewsCmd groups the review subcommands
var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Post and manage your reviews",
}

// reviewsCreateCmd posts a review of a spot
var reviewsCreateCmd = &cobra.Command{
	Use:   "create <spot-id>",
	Short: "Post a review of a spot",
	Long: `Post a star review of a spot.

Examples:
  spotctl reviews create 12 --stars 5 --text "Great stay, spotless place."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spotID, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		review, err := c.CreateReview(context.Background(), spotID, reviewText, reviewStars)
		if err != nil {
			return err
		}
		fmt.Printf("posted review #%d (%d/5)\n", review.ID, review.Stars)
		return nil
	},
}

// reviewsListCmd lists the session user's reviews
var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		reviews, err := c.CurrentReviews(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reviews)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSPOT\tSTARS\tREVIEW")
		for _, r := range reviews {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.ID, r.Spot.Name, r.Stars, r.Review.Review)
		}
		w.Flush()
		return nil
	},
}

// reviewsUpdateCmd replaces a review's text and stars
var reviewsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update one of your reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		review, err := c.UpdateReview(context.Background(), id, reviewText, reviewStars)
		if err != nil {
			return err
		}
		fmt.Printf("updated review #%d (%d/5)\n", review.ID, review.Stars)
		return nil
	},
}

// reviewsDeleteCmd removes a review after confirmation
var reviewsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		// Deletion takes the review's images with it, so confirm first
		if !deleteYes && !confirm(fmt.Sprintf("Delete review #%d and its images?", id)) {
			fmt.Println("aborted")
			return nil
		}
		c := newClient()
		if err := c.DeleteReview(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("deleted review #%d\n", id)
		return nil
	},
}

// reviewsAddImageCmd attaches an image to one of the session user's reviews
var reviewsAddImageCmd = &cobra.Command{
	Use:   "add-image <id>",
	Short: "Attach an image to one of your reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		img, err := c.AddReviewImage(context.Background(), id, reviewImage)
		if err != nil {
			return err
		}
		fmt.Printf("attached image #%d\n", img.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.AddCommand(reviewsCreateCmd)
	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsUpdateCmd)
	reviewsCmd.AddCommand(reviewsDeleteCmd)
	reviewsCmd.AddCommand(reviewsAddImageCmd)

	for _, cmd := range []*cobra.Command{reviewsCreateCmd, reviewsUpdateCmd} {
		cmd.Flags().StringVar(&reviewText, "text", "", "Review text (required)")
		cmd.Flags().IntVar(&reviewStars, "stars", 0, "Star rating, 1-5 (required)")
		_ = cmd.MarkFlagRequired("text")
		_ = cmd.MarkFlagRequired("stars")
	}

	reviewsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	reviewsAddImageCmd.Flags().StringVar(&reviewImage, "url", "", "Image URL (required)")
	_ = reviewsAddImageCmd.MarkFlagRequired("url")
}
