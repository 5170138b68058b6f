package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/seedtoken"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encode and decode session tokens locally",
	}

	cmd.AddCommand(newTokenEncodeCmd())
	cmd.AddCommand(newTokenDecodeCmd())

	return cmd
}

func newTokenEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <seed>",
		Short: "Encode a raw seed as a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q", args[0])
			}

			token := seedtoken.New().Encode(model.RawSeed(seed))
			newOutput(cmd).Print(TokenResult{Token: string(token), Seed: seed})
			return nil
		},
	}
}

func newTokenDecodeCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Decode a token to its raw seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []seedtoken.Option
			if strict {
				opts = append(opts, seedtoken.WithChecksumVerification())
			}
			codec := seedtoken.New(opts...)

			seed, err := codec.Decode(model.SeedToken(args[0]))
			if err != nil {
				return err
			}

			newOutput(cmd).Print(TokenResult{Token: string(codec.Encode(seed)), Seed: uint64(seed)})
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Reject tokens whose check digits do not match")

	return cmd
}
