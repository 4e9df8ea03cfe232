package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rafbgarcia/flatsite/internal/rewrite"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Print how a link is rewritten inside a given build file",
		Example: `  flatsite resolve /product/123 --from games/index.html
  ../product.html?id=123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			site, err := p.site()
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString("from")
			verbose, _ := cmd.Flags().GetBool("verbose")

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, site.RewriteURL(from, args[0]))

			if verbose {
				if route, ok := site.Resolve(rewrite.Split(args[0]).Path); ok {
					fmt.Fprintf(out, "page:   %s\nbuild:  %s\nparams: %v\n", route.Page, route.Dest, route.Params)
				} else {
					fmt.Fprintln(out, "page:   (no match)")
				}
			}
			return nil
		},
	}
	cmd.Flags().String("from", "index.html", "build file containing the link")
	cmd.Flags().BoolP("verbose", "v", false, "also print the matched page and parameters")
	return cmd
}
