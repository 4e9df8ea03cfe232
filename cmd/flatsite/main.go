package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flatsite",
		Short:         "Export a page tree with dynamic routes as flat static files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("root", ".", "project root containing flatsite.yaml")
	root.PersistentFlags().String("pages", "", "pages directory (overrides config)")
	root.PersistentFlags().String("out", "", "output directory (overrides config)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newExportCmd(),
		newServeCmd(),
		newRoutesCmd(),
		newResolveCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("error:", err)
		os.Exit(1)
	}
}
