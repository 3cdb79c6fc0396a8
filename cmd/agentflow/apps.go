package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps [query]",
		Short: "List or search the app catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			apps := e.ws.Registry().SearchApps(strings.Join(args, " "))
			if len(apps) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no apps found")
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tTRIGGERS\tOPERATIONS")
			for _, a := range apps {
				ops := 0
				for _, r := range a.Resources {
					ops += len(r.Operations)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", a.ID, a.Name, a.Category, len(a.Triggers), ops)
			}
			return tw.Flush()
		},
	}
}
