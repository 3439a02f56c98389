package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"

	"gridplan/reinforcement"
	"gridplan/server"

	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	var host, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a page that animates solving the configured grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var config *reinforcement.SolverConfig
			if config, err = loadConfig(cmd); err != nil {
				return
			}

			addr := net.JoinHostPort(host, port)
			var srv *server.Server
			if srv, err = server.NewServer(addr, config); err != nil {
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			log.Printf("serving %s on http://%s", config.Algorithm, addr)
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "The host ip")
	cmd.Flags().StringVar(&port, "port", "8080", "The host port")
	return cmd
}
