package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionDrawCmd())

	return cmd
}

func newSessionNewCmd() *cobra.Command {
	var handSize int

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Post("/api/v1/sessions", map[string]int{"hand_size": handSize}, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&handSize, "hand-size", 3, "Cards per hand")

	return cmd
}

func newSessionDrawCmd() *cobra.Command {
	var handSize int

	cmd := &cobra.Command{
		Use:   "draw <token>",
		Short: "Draw both hands for a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/sessions/%d/%s", handSize, url.PathEscape(args[0]))

			var result Deal
			if err := client.Get(path, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&handSize, "hand-size", 3, "Cards per hand")

	return cmd
}

func newMatchupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matchup <card1> <card2>",
		Short: "Show two cards and their precedent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c1, c2, err := parsePair(args)
			if err != nil {
				return err
			}

			var result Matchup
			if err := client.Get(fmt.Sprintf("/api/v1/matchups/%d/%d", c1, c2), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newVerdictCmd() *cobra.Command {
	var winner string

	cmd := &cobra.Command{
		Use:   "verdict <card1> <card2>",
		Short: "Judge a pair of cards",
		Long: `Judge a pair of cards. The first verdict for a pair becomes its
precedent; later verdicts are upheld or overruled against it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c1, c2, err := parsePair(args)
			if err != nil {
				return err
			}
			w, err := parseCardID(winner)
			if err != nil {
				return err
			}

			req := map[string]int64{"c1": c1, "c2": c2, "winner": w}
			var result Verdict
			if err := client.Post("/api/v1/verdicts", req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "ID of the winning card")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}

func newPrecedentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "precedent <card1> <card2>",
		Short: "Show the precedent for a pair of cards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c1, c2, err := parsePair(args)
			if err != nil {
				return err
			}

			var result Outcome
			if err := client.Get(fmt.Sprintf("/api/v1/precedents/%d/%d", c1, c2), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func parsePair(args []string) (int64, int64, error) {
	c1, err := parseCardID(args[0])
	if err != nil {
		return 0, 0, err
	}
	c2, err := parseCardID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return c1, c2, nil
}
