// Package main is the uno application entrypoint.
package main

import (
	"net"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/phuongkuro/Uno-text-based-LAN/client"
	"github.com/phuongkuro/Uno-text-based-LAN/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

var (
	rootCmd = &cobra.Command{
		Use:   "uno",
		Short: "A text-based Uno game played over the LAN.",
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Starts an Uno game server.",
		RunE:  runServer,
	}

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Starts an interactive Uno client.",
		RunE:  runClient,
	}
)

func setLogger(level string) {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)

	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return errors.Wrap(err, "load config failed")
	}
	setLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gs := server.NewGameServer(cfg)
	return errors.Wrap(gs.ListenAndServe(ctx), "run server failed")
}

func runClient(cmd *cobra.Command, _ []string) error {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return errors.Wrap(err, "load config failed")
	}
	setLogger(cfg.LogLevel)

	host := cfg.Host
	if host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, strconv.Itoa(cfg.Port))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return errors.Wrap(client.New(addr).Run(ctx), "run client failed")
}

func init() {
	rootCmd.AddCommand(
		serverCmd,
		clientCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
}
