package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"spot_market/internal/client"

	"github.com/spf13/cobra"
)

var (
	// List flags
	listPage int
	listSize int
	listMine bool

	// Create/update flags
	spotAddress     string
	spotCity        string
	spotState       string
	spotCountry     string
	spotLat         float64
	spotLng         float64
	spotName        string
	spotDescription string
	spotPrice       float64

	// Image flags
	imageURL     string
	imagePreview bool

	// Delete flags
	deleteYes bool
)

// spotsCmd groups the spot subcommands
var spotsCmd = &cobra.Command{
	Use:   "spots",
	Short: "Browse and manage spots",
}

// spotsListCmd prints a feed page, or the caller's spots with --mine
var spotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List spots",
	Long: `List spots from the public feed, one page at a time.

With --mine the listing is restricted to spots owned by the session
user (requires a token).

Examples:
  spotctl spots list --page 2 --size 10
  spotctl spots list --mine --token $SPOT_MARKET_TOKEN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var spots []client.SpotSummary
		if listMine {
			mine, err := c.CurrentSpots(context.Background())
			if err != nil {
				return err
			}
			spots = mine
		} else {
			page, err := c.ListSpots(context.Background(), listPage, listSize)
			if err != nil {
				return err
			}
			spots = page.Spots
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(spots)
		}
		printSpotTable(spots)
		return nil
	},
}

// spotsGetCmd prints one spot in full
var spotsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one spot with its reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		spot, err := c.GetSpot(context.Background(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(spot)
		}
		fmt.Printf("#%d %s (%s, %s, %s)\n", spot.ID, spot.Name, spot.City, spot.State, spot.Country)
		fmt.Printf("host: %s %s  price: %.2f/night", spot.Owner.FirstName, spot.Owner.LastName, spot.Price)
		if spot.AvgRating != nil {
			fmt.Printf("  rating: %.1f (%d reviews)", *spot.AvgRating, spot.NumReviews)
		} else {
			fmt.Print("  no reviews yet")
		}
		fmt.Println()
		if spot.PreviewImage != nil {
			fmt.Println("preview:", *spot.PreviewImage)
		}
		fmt.Println(spot.Description)
		for _, r := range spot.Reviews {
			fmt.Printf("  [%d/5] %s %s: %s\n", r.Stars, r.User.FirstName, r.User.LastName, r.Review.Review)
		}
		return nil
	},
}

// spotsCreateCmd creates a spot owned by the session user
var spotsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a spot",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		spot, err := c.CreateSpot(context.Background(), spotParamsFromFlags())
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(spot)
		}
		fmt.Printf("created spot #%d %q\n", spot.ID, spot.Name)
		return nil
	},
}

// spotsUpdateCmd replaces the fields of a spot the session user owns
var spotsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a spot you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		spot, err := c.UpdateSpot(context.Background(), id, spotParamsFromFlags())
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(spot)
		}
		fmt.Printf("updated spot #%d %q\n", spot.ID, spot.Name)
		return nil
	},
}

// spotsDeleteCmd removes a spot after confirmation
var spotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a spot you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		// Deletion cascades through images and reviews, so confirm first
		if !deleteYes && !confirm(fmt.Sprintf("Delete spot #%d and all of its images and reviews?", id)) {
			fmt.Println("aborted")
			return nil
		}
		c := newClient()
		if err := c.DeleteSpot(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("deleted spot #%d\n", id)
		return nil
	},
}

// spotsAddImageCmd attaches an image to a spot the session user owns
var spotsAddImageCmd = &cobra.Command{
	Use:   "add-image <id>",
	Short: "Attach an image to a spot you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := newClient()
		img, err := c.AddSpotImage(context.Background(), id, imageURL, imagePreview)
		if err != nil {
			return err
		}
		fmt.Printf("attached image #%d (preview=%v)\n", img.ID, img.Preview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(spotsCmd)
	spotsCmd.AddCommand(spotsListCmd)
	spotsCmd.AddCommand(spotsGetCmd)
	spotsCmd.AddCommand(spotsCreateCmd)
	spotsCmd.AddCommand(spotsUpdateCmd)
	spotsCmd.AddCommand(spotsDeleteCmd)
	spotsCmd.AddCommand(spotsAddImageCmd)

	spotsListCmd.Flags().IntVar(&listPage, "page", 0, "Feed page (server default 1)")
	spotsListCmd.Flags().IntVar(&listSize, "size", 0, "Page size, 1-20 (server default 20)")
	spotsListCmd.Flags().BoolVar(&listMine, "mine", false, "Only spots owned by the session user")

	for _, cmd := range []*cobra.Command{spotsCreateCmd, spotsUpdateCmd} {
		cmd.Flags().StringVar(&spotAddress, "address", "", "Street address (required)")
		cmd.Flags().StringVar(&spotCity, "city", "", "City (required)")
		cmd.Flags().StringVar(&spotState, "state", "", "State or province (required)")
		cmd.Flags().StringVar(&spotCountry, "country", "", "Country (required)")
		cmd.Flags().Float64Var(&spotLat, "lat", 0, "Latitude, -90 to 90")
		cmd.Flags().Float64Var(&spotLng, "lng", 0, "Longitude, -180 to 180")
		cmd.Flags().StringVar(&spotName, "name", "", "Listing name, 1-50 chars (required)")
		cmd.Flags().StringVar(&spotDescription, "description", "", "Listing description (required)")
		cmd.Flags().Float64Var(&spotPrice, "price", 0, "Nightly price, > 0 (required)")
		_ = cmd.MarkFlagRequired("address")
		_ = cmd.MarkFlagRequired("city")
		_ = cmd.MarkFlagRequired("state")
		_ = cmd.MarkFlagRequired("country")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("description")
		_ = cmd.MarkFlagRequired("price")
	}

	spotsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	spotsAddImageCmd.Flags().StringVar(&imageURL, "url", "", "Image URL (required)")
	spotsAddImageCmd.Flags().BoolVar(&imagePreview, "preview", false, "Flag as the spot's preview image")
	_ = spotsAddImageCmd.MarkFlagRequired("url")
}

// spotParamsFromFlags bundles the create/update flag values.
func spotParamsFromFlags() client.SpotParams {
	return client.SpotParams{
		Address:     spotAddress,
		City:        spotCity,
		State:       spotState,
		Country:     spotCountry,
		Lat:         spotLat,
		Lng:         spotLng,
		Name:        spotName,
		Description: spotDescription,
		Price:       spotPrice,
	}
}

// parseID parses a positional id argument.
func parseID(s string) (uint, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(v), nil
}

// confirm prompts on stdin and reports whether the user answered yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printSpotTable renders spots as an aligned table.
func printSpotTable(spots []client.SpotSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tCOUNTRY\tPRICE\tRATING")
	for _, s := range spots {
		rating := "-"
		if s.AvgRating != nil {
			rating = strconv.FormatFloat(*s.AvgRating, 'f', 1, 64)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n", s.ID, s.Name, s.City, s.Country, s.Price, rating)
	}
	w.Flush()
}
