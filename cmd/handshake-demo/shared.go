package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/alxayo/go-handshake/internal/config"
	"github.com/alxayo/go-handshake/internal/logger"
	"github.com/alxayo/go-handshake/internal/metrics"
	"github.com/alxayo/go-handshake/internal/statem"
)

// setupCommon applies the root command's persistent flags: it
// initializes the global logger, loads (or defaults) the driver
// policy, and optionally starts a metrics listener. Every subcommand
// calls this before touching internal/statem.
func setupCommon(cmd *cobra.Command) (*config.Policy, *metrics.Sink, error) {
	logger.Init()

	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, nil, err
	}
	levelFromFlag := cmd.Flags().Changed("log-level")
	if levelFromFlag {
		if err := logger.SetLevel(level); err != nil {
			return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	var policy *config.Policy
	if configPath == "" {
		policy = config.Default()
	} else {
		policy, err = config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading --config: %w", err)
		}
		if !levelFromFlag && policy.Logging.Level != "" {
			if err := logger.SetLevel(policy.Logging.Level); err != nil {
				return nil, nil, fmt.Errorf("invalid logging.level in --config: %w", err)
			}
		}
	}

	registry := prometheus.NewRegistry()
	sink := metrics.NewSink(registry)

	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return nil, nil, err
	}
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", metricsAddr)
	}

	return policy, sink, nil
}

// driveToCompletion calls Drive repeatedly, honoring WouldBlock by
// waiting on limiter before retrying, until the handshake succeeds,
// fails fatally, or ctx is canceled. This loopback demo's Transport
// never actually returns WouldBlock (every read blocks in the kernel
// instead), but a real non-blocking socket would, so the CLI exercises
// the retry contract a caller is expected to honor (§5). Each
// individual Drive call is timed and counted in-flight via sink,
// matching ObserveDrive's own "one Drive call" contract rather than
// the whole retry loop.
func driveToCompletion(ctx context.Context, driver *statem.Driver, sess *statem.Session, role statem.Role, transport statem.Transport, limiter *rate.Limiter, sink *metrics.Sink) error {
	for {
		stop := sink.ObserveDrive()
		result, err := driver.Drive(sess, role, transport)
		stop()
		switch result {
		case statem.Success:
			return nil
		case statem.WouldBlock:
			if waitErr := limiter.Wait(ctx); waitErr != nil {
				return waitErr
			}
		default:
			return err
		}
	}
}
