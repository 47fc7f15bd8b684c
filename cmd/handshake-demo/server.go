package main

import (
	"net"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/alxayo/go-handshake/internal/demo"
	"github.com/alxayo/go-handshake/internal/logger"
	"github.com/alxayo/go-handshake/internal/statem"
)

func newServerCommand() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Listen for one connection and run the server side of the demo handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, sink, err := setupCommon(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return err
			}
			defer ln.Close()

			log := logger.Logger().With("role", "server")
			log.Info("listening", "addr", ln.Addr().String())

			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Info("accepted connection", "remote", conn.RemoteAddr().String())

			transport := demo.NewTransport(conn)
			transport.SetPolicy(policy)

			driver := statem.NewDriver(demo.Hooks(transport))
			driver.Stats = sink
			driver.Log = log

			sess := statem.NewSession()
			sess.SetTransport(statem.TransportStream)

			limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
			if err := driveToCompletion(cmd.Context(), driver, sess, statem.RoleServer, transport, limiter, sink); err != nil {
				return err
			}

			log.Info("handshake complete", "hand_state", sess.HandState().String())
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":17935", "TCP address to listen on")

	return cmd
}
