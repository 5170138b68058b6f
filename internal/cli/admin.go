package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/committy/internal/services/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (require an admin key)",
	}

	cmd.AddCommand(newAdminReportsCmd())
	cmd.AddCommand(newAdminHashKeyCmd())
	cmd.AddCommand(newAdminLoginCmd())

	return cmd
}

func newAdminReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Review reported cards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List open reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ReportList
			if err := client.Get("/api/v1/admin/reports", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <report-id>",
		Short: "Get a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}

			var result Report
			if err := client.Get(fmt.Sprintf("/api/v1/admin/reports/%d", id), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <report-id>",
		Short: "Dismiss a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(fmt.Sprintf("/api/v1/admin/reports/%d", id), nil); err != nil {
				return err
			}

			newOutput(cmd).PrintMessage(fmt.Sprintf("Dismissed report %d", id))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <card-id>",
		Short: "Dismiss every report for a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}

			var result Cleared
			if err := client.Delete(fmt.Sprintf("/api/v1/admin/cards/%d/reports", id), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	})

	return cmd
}

func newAdminHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Hash an admin key for the server's ADMIN_KEY_HASH setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashKey(args[0])
			if err != nil {
				return err
			}

			newOutput(cmd).Print(HashResult{Hash: hash})
			return nil
		},
	}
}

func newAdminLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <key>",
		Short: "Save an admin key to the key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SaveAdminKey(args[0]); err != nil {
				return err
			}

			newOutput(cmd).PrintMessage("Admin key saved to " + cfg.AdminKeyFile)
			return nil
		},
	}
}

func parseReportID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid report id %q", s)
	}
	return id, nil
}
