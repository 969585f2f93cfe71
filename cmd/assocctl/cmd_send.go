package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

var sendCmd = &cobra.Command{
	Use:   "send <newsletter-id>",
	Short: "Send a newsletter now, or a test copy with --test-email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		testEmail, _ := cmd.Flags().GetString("test-email")

		a, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Services.Newsletters.Send(cmd.Context(), args[0], newsletter.SendOptions{
			TestMode:  testEmail != "",
			TestEmail: testEmail,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent=%d failed=%d\n", report.Sent, report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d deliveries failed", report.Failed)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().String("test-email", "", "send one [TEST] copy to this address instead")
}
