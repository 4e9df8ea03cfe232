package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rafbgarcia/flatsite/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the exported site; page URLs redirect to their flat files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("port"); v != "" {
				p.cfg.Port = v
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if build, _ := cmd.Flags().GetBool("export"); build {
				if err := runExport(ctx, out, p); err != nil {
					return err
				}
			}

			site, err := p.site()
			if err != nil {
				return err
			}
			srv, err := server.New(site, afero.NewReadOnlyFs(p.outFs()), p.log)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "  HTTP server ..... listening on :%s (%d page routes)\n", p.cfg.Port, len(srv.Routes()))
			return srv.ListenAndServe(ctx, ":"+p.cfg.Port)
		},
	}
	cmd.Flags().String("port", "", "HTTP server port (overrides config)")
	cmd.Flags().Bool("export", false, "export before serving")
	return cmd
}
