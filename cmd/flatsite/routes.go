package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every page with its build file and parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			site, err := p.site()
			if err != nil {
				return err
			}
			if err := site.Validate(); err != nil {
				return err
			}
			entries, err := site.Entries()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PAGE\tBUILD FILE\tPARAMS")
			for _, e := range entries {
				params := "-"
				if len(e.ParamNames) > 0 {
					params = strings.Join(e.ParamNames, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Page, e.Dest, params)
			}
			return tw.Flush()
		},
	}
}
