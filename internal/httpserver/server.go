package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gfdmit/web-forum/blog-service/config"
)

type Server struct {
	server          *http.Server
	shutDownTimeout time.Duration
	logger          *zap.Logger
}

func New(conf config.HTTPServer, handler http.Handler, logger *zap.Logger) *Server {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		Addr:         fmt.Sprintf("%v:%v", conf.BindAddress, conf.BindPort),
	}

	s := &Server{
		server:          srv,
		shutDownTimeout: conf.ShutdownTimeout,
		logger:          logger,
	}
	return s
}

// Run serves until ctx is cancelled and then shuts the server down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.server.Serve(ln)
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("http server shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutDownTimeout)
		defer cancel()

		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
