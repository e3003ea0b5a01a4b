package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fulldump/pipelinedb/api"
	"github.com/fulldump/pipelinedb/configuration"
	"github.com/fulldump/pipelinedb/database"
	"github.com/fulldump/pipelinedb/service"
)

var VERSION = "dev"

// NewLogger builds a production logger at level.
func NewLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	err := config.Level.UnmarshalText([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("log level '%s': %w", level, err)
	}
	return config.Build()
}

// Bootstrap wires the database and the HTTP API. start blocks until stop is
// called, SIGINT/SIGTERM is received or either the database or the server
// fails, in which case it returns that error.
func Bootstrap(c *configuration.Configuration, logger *zap.Logger) (start func() error, stop func(), err error) {

	db := database.NewDatabase(&database.Config{
		Dir:             c.Dir,
		Engine:          c.Engine,
		CreateIfMissing: c.CreateIfMissing,
		Logger:          logger.Named("database"),
	})

	b := api.Build(service.NewService(db), VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(zap.NewStdLog(logger.Named("access"))),
		api.PrettyErrorInterceptor,
		api.RecoverFromPanic,
		api.InterceptorUnavailable(db),
	)

	s := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen '%s': %w", c.HttpAddr, err)
	}
	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			err := db.Stop()
			if err != nil {
				logger.Error("stop database", zap.Error(err))
			}
			err = s.Shutdown(context.Background())
			if err != nil {
				logger.Error("shutdown http server", zap.Error(err))
			}
		})
	}

	start = func() error {

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			err := db.Start()
			if errors.Is(err, database.ErrDatabaseClosed) {
				return nil
			}
			return err
		})

		g.Go(func() error {
			err := s.Serve(ln)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})

		// gctx is done on a signal or as soon as one side fails, either way
		// the other side has to be released.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-gctx.Done():
				if ctx.Err() != nil {
					logger.Info("signal received")
				}
				stop()
			case <-done:
			}
		}()

		return g.Wait()
	}

	return start, stop, nil
}
