// Command handshake-demo drives internal/statem over a real TCP
// loopback connection, proving out the full client/server handshake
// outside the package's own scripted tests.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "handshake-demo",
		Short:   "Exercise the handshake driver over a loopback TCP connection",
		Version: version,
		Long: `handshake-demo runs the two-message hello/hello-ack exchange
implemented in internal/demo against internal/statem's driver, either
as the client or the server side of a TCP connection.

Run 'handshake-demo server' in one terminal, then 'handshake-demo client'
in another; the client dials once and does not retry.`,
	}

	root.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().String("config", "", "path to a YAML policy file (see internal/config); defaults to a conservative built-in policy")
	root.PersistentFlags().String("metrics-addr", "", "address to expose Prometheus metrics on (e.g. :9090); disabled if empty")

	root.AddCommand(newServerCommand())
	root.AddCommand(newClientCommand())

	return root
}
