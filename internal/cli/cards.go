package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Card catalog commands",
	}

	cmd.AddCommand(newCardsListCmd())
	cmd.AddCommand(newCardsGetCmd())
	cmd.AddCommand(newCardsRandomCmd())
	cmd.AddCommand(newCardsSubmitCmd())
	cmd.AddCommand(newCardsReportCmd())

	return cmd
}

func newCardsListCmd() *cobra.Command {
	var idsOnly, countOnly, links bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd)

			switch {
			case countOnly:
				var result Count
				if err := client.Get("/api/v1/cards/count", &result); err != nil {
					return err
				}
				out.Print(result)
			case idsOnly:
				var result CardIDs
				if err := client.Get("/api/v1/cards/ids", &result); err != nil {
					return err
				}
				out.Print(result)
			case links:
				var result CardLinks
				if err := client.Get("/api/v1/cards/links", &result); err != nil {
					return err
				}
				out.Print(result)
			default:
				var result CardList
				if err := client.Get("/api/v1/cards", &result); err != nil {
					return err
				}
				out.Print(result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Only list card IDs")
	cmd.Flags().BoolVar(&countOnly, "count", false, "Only count cards")
	cmd.Flags().BoolVar(&links, "links", false, "List shareable card links")
	cmd.MarkFlagsMutuallyExclusive("ids", "count", "links")

	return cmd
}

func newCardsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}

			var result Card
			if err := client.Get(fmt.Sprintf("/api/v1/cards/%d", id), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newCardsRandomCmd() *cobra.Command {
	var (
		n      int
		except []int64
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Pick random cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("n", strconv.Itoa(n))
			for _, id := range except {
				query.Add("except", strconv.FormatInt(id, 10))
			}

			var result CardList
			if err := client.Get("/api/v1/cards/random?"+query.Encode(), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 2, "Number of cards")
	cmd.Flags().Int64SliceVar(&except, "except", nil, "Card IDs to leave out")

	return cmd
}

func newCardsSubmitCmd() *cobra.Command {
	var (
		name, description, imageURL string
		stats                       []string
		beats, losesTo              int64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new card",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":        name,
				"description": description,
				"image_url":   imageURL,
			}

			if len(stats) > 0 {
				parsed, err := parseStats(stats)
				if err != nil {
					return err
				}
				req["stats"] = parsed
			}

			beatsSet := cmd.Flags().Changed("beats")
			losesSet := cmd.Flags().Changed("loses-to")
			if beatsSet != losesSet {
				return fmt.Errorf("--beats and --loses-to must be given together")
			}
			if beatsSet {
				req["beats"] = beats
				req["loses_to"] = losesTo
			}

			var result Card
			if err := client.Post("/api/v1/cards", req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Card name")
	cmd.Flags().StringVar(&description, "description", "", "Card description")
	cmd.Flags().StringVar(&imageURL, "image", "", "Image URL")
	cmd.Flags().StringSliceVar(&stats, "stats", nil, "Four comma-separated stats; leave a slot empty for the minimum")
	cmd.Flags().Int64Var(&beats, "beats", 0, "ID of a card the new card beats")
	cmd.Flags().Int64Var(&losesTo, "loses-to", 0, "ID of a card the new card loses to")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCardsReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Report a card for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}

			var result Report
			if err := client.Post(fmt.Sprintf("/api/v1/cards/%d/reports", id), nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func parseCardID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid card id %q", s)
	}
	return id, nil
}

// parseStats turns up to four values into the request's stat slots. Empty
// values become null so the server applies its default.
func parseStats(values []string) ([]*int, error) {
	if len(values) > 4 {
		return nil, fmt.Errorf("expected at most 4 stats, got %d", len(values))
	}
	stats := make([]*int, 4)
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stat %q", v)
		}
		stats[i] = &n
	}
	return stats, nil
}
