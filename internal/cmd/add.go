package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seatwatch/seatwatch/internal/target"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a target to watch",
	Long: `Add a ticketing page to the watch list. The target ID is derived from
the event code in the URL unless --id is given. With --on-sale set, polling
accelerates as that time approaches.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var addFlags struct {
	id       string
	name     string
	venue    string
	city     string
	date     string
	onSale   string
	quantity int
	maxPrice float64
	sections []string
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addFlags.id, "id", "", "explicit target ID (default: derived from URL)")
	addCmd.Flags().StringVar(&addFlags.name, "name", "", "human-readable event name")
	addCmd.Flags().StringVar(&addFlags.venue, "venue", "", "venue name")
	addCmd.Flags().StringVar(&addFlags.city, "city", "", "city of the venue")
	addCmd.Flags().StringVar(&addFlags.date, "date", "", "event date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addFlags.onSale, "on-sale", "", "predicted on-sale time (RFC 3339 or \"YYYY-MM-DD HH:MM\")")
	addCmd.Flags().IntVar(&addFlags.quantity, "quantity", 2, "number of tickets to acquire")
	addCmd.Flags().Float64Var(&addFlags.maxPrice, "max-price", 0, "price ceiling per ticket (0 = no limit)")
	addCmd.Flags().StringSliceVar(&addFlags.sections, "sections", nil, "preferred seating sections, in order")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pageURL := args[0]
	id := addFlags.id
	if id == "" {
		if id, err = targetIDFromURL(pageURL); err != nil {
			return err
		}
	}

	name := addFlags.name
	if name == "" {
		name = id
	}

	t := &target.Target{
		ID:                id,
		Name:              name,
		URL:               pageURL,
		Venue:             addFlags.venue,
		City:              addFlags.city,
		EventDate:         addFlags.date,
		Quantity:          addFlags.quantity,
		PriceCeiling:      addFlags.maxPrice,
		PreferredSections: addFlags.sections,
		TrackingEnabled:   true,
	}

	if addFlags.onSale != "" {
		onSale, err := parseOnSale(addFlags.onSale)
		if err != nil {
			return err
		}
		t.PredictedOnSale = &onSale
	}

	registry, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	if err := registry.Add(t); err != nil {
		return fmt.Errorf("failed to add target: %w", err)
	}

	fmt.Printf("Added target %s\n", t.ID)
	fmt.Printf("Name: %s\n", t.Name)
	if t.PredictedOnSale != nil {
		fmt.Printf("Predicted on sale: %s\n", t.PredictedOnSale.Format("2006-01-02 15:04 MST"))
	}
	return nil
}
