package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignite/assoc-admin/internal/api"
	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/listing"
)

type exporter func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error

var exporters = map[string]exporter{
	"members": func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error {
		rows, err := svc.Members.Export(ctx, q)
		if err != nil {
			return err
		}
		return export.Write(w, export.MemberColumns, rows)
	},
	"specialists": func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error {
		rows, err := svc.Specialists.Export(ctx, q)
		if err != nil {
			return err
		}
		return export.Write(w, export.SpecialistColumns, rows)
	},
	"subscribers": func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error {
		rows, err := svc.Subscribers.Export(ctx, q)
		if err != nil {
			return err
		}
		return export.Write(w, export.SubscriberColumns, rows)
	},
	"membership-applications": func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error {
		page, err := svc.Applications.ListMembership(ctx, q.All())
		if err != nil {
			return err
		}
		return export.Write(w, export.MembershipApplicationColumns, page.Items)
	},
	"specialist-applications": func(ctx context.Context, svc api.Services, q listing.Query, w io.Writer) error {
		page, err := svc.Applications.ListSpecialist(ctx, q.All())
		if err != nil {
			return err
		}
		return export.Write(w, export.SpecialistApplicationColumns, page.Items)
	},
}

func exportNames() []string {
	names := make([]string, 0, len(exporters))
	for n := range exporters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var exportCmd = &cobra.Command{
	Use:   "export <" + strings.Join(exportNames(), "|") + ">",
	Short: "Write a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, ok := exporters[args[0]]
		if !ok {
			return fmt.Errorf("unknown export %q (want one of %s)", args[0], strings.Join(exportNames(), ", "))
		}
		flags := cmd.Flags()
		search, _ := flags.GetString("search")
		status, _ := flags.GetString("status")
		out, _ := flags.GetString("out")

		a, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = cmd.OutOrStdout()
		if out != "" {
			if out == "auto" {
				out = export.Filename(args[0], time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		q := listing.Query{Search: search, Status: status}.All()
		if err := run(cmd.Context(), a.Services, q, w); err != nil {
			return fmt.Errorf("export %s: %w", args[0], err)
		}
		if out != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("search", "", "only rows matching this text")
	exportCmd.Flags().String("status", "", "only rows with this status")
	exportCmd.Flags().StringP("out", "o", "", `output file ("auto" names it <export>-YYYY-MM-DD.csv); stdout when empty`)
}
