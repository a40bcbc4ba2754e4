package server

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/phuongkuro/Uno-text-based-LAN/game"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Config holds the server's environment configuration
type Config struct {
	Host        string        `env:"UNO_HOST,default=0.0.0.0"`
	Port        int           `env:"UNO_PORT,default=65432"`
	ReadTimeout time.Duration `env:"UNO_READ_TIMEOUT,default=5m"`
	LogLevel    string        `env:"UNO_LOG_LEVEL,default=info"`
}

// ConfigFromEnv reads the configuration from the environment
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode env config failed")
	}
	return cfg, nil
}

// Addr returns the host:port pair to bind to
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GameServer owns the single table and the session registry. All
// table mutation goes through gs.mu; one critical section per game.
type GameServer struct {
	addr        string
	readTimeout time.Duration

	registry *Registry

	mu    sync.Mutex
	table *game.Table
}

// NewGameServer creates a new GameServer around an empty table
func NewGameServer(cfg Config) *GameServer {
	return &GameServer{
		addr:        cfg.Addr(),
		readTimeout: cfg.ReadTimeout,
		registry:    NewRegistry(),
		table:       game.NewTable(),
	}
}

// ListenAndServe accepts connections until the context is cancelled
// or the listener fails.
func (gs *GameServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", gs.addr)
	}
	return gs.Serve(ctx, ln)
}

// Serve accepts connections on ln. Each connection gets its own
// goroutine; a handler only ever blocks its own connection. Only a
// listener-level failure is fatal.
func (gs *GameServer) Serve(ctx context.Context, ln net.Listener) error {
	logger.WithField("addr", ln.Addr().String()).Info("server listening")

	go func() {
		<-ctx.Done()
		ln.Close()
		gs.registry.CloseAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Info("server shutting down")
				return nil
			default:
			}
			return errors.Wrap(err, "accept failed")
		}
		go gs.handleConnection(conn)
	}
}
