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

func newClientCommand() *cobra.Command {
	var dialAddr string
	var dialTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Dial a handshake-demo server and run the client side of the demo handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, sink, err := setupCommon(cmd)
			if err != nil {
				return err
			}

			log := logger.Logger().With("role", "client")

			conn, err := net.DialTimeout("tcp", dialAddr, dialTimeout)
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Info("connected", "addr", dialAddr)

			transport := demo.NewTransport(conn)
			transport.SetPolicy(policy)

			driver := statem.NewDriver(demo.Hooks(transport))
			driver.Stats = sink
			driver.Log = log

			sess := statem.NewSession()
			sess.SetTransport(statem.TransportStream)

			limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
			if err := driveToCompletion(cmd.Context(), driver, sess, statem.RoleClient, transport, limiter, sink); err != nil {
				return err
			}

			log.Info("handshake complete", "hand_state", sess.HandState().String())
			return nil
		},
	}

	cmd.Flags().StringVar(&dialAddr, "addr", "127.0.0.1:17935", "TCP address of the handshake-demo server")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 5*time.Second, "timeout for the initial TCP dial")

	return cmd
}
