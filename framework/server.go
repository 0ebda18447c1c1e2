package framework

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/taoxinyi/ruad/framework/static"
	"github.com/taoxinyi/ruad/framework/wire"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

const maxAcceptDelay = time.Second

// Server accepts connections and hands each one to its own worker goroutine.
// Workers share nothing: each one reports a connRecord over a channel and a single
// collector goroutine folds the records into Stats.
type Server struct {
	config   *Config
	resolver *static.Resolver
	limits   wire.Limits
	log      zerolog.Logger
	// sem caps concurrent workers, nil when MaxConns is 0
	sem *semaphore.Weighted
	// whether the server is shutting down
	stop int32
	// in-flight workers
	workers sync.WaitGroup

	mu sync.Mutex
	// open connections, interrupted once the shutdown grace period is over
	conns map[net.Conn]struct{}
	// whether conns were interrupted; connections tracked later are interrupted at once
	interrupted bool
}

// NewServer validates config and creates a server serving files from config.Root
func NewServer(config *Config) (*Server, error) {
	setDefaultConfig(config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{
		config:   config,
		resolver: static.New(os.DirFS(config.Root)),
		limits:   config.Limits(),
		log:      *config.Logger,
		conns:    make(map[net.Conn]struct{}),
	}
	if config.MaxConns > 0 {
		s.sem = semaphore.NewWeighted(int64(config.MaxConns))
	}
	return s, nil
}

// Listen opens the listening socket. Failing here is a setup error.
func (s *Server) Listen() (net.Listener, error) {
	l, err := listen(s.config.Address(), s.config.Backlog)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("address", l.Addr().String()).
		Int("backlog", s.config.Backlog).
		Str("root", s.config.Root).
		Int("max_conns", s.config.MaxConns).
		Msg("listening")
	return l, nil
}

// Serve accepts connections on l until ctx is done or an interrupt or terminate signal
// arrives. It then closes l, waits for in-flight connections to finish and returns the
// combined stats. Serve takes ownership of l.
func (s *Server) Serve(ctx context.Context, l net.Listener) (*Stats, error) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	records := make(chan connRecord, 64)
	stats := newStats()
	collected := make(chan struct{})
	go func() {
		for rec := range records {
			stats.record(rec)
		}
		close(collected)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.acceptLoop(gctx, l, records)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Stop()
		if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Warn().Err(err).Msg("closing listener")
		}
		return nil
	})
	err := g.Wait()
	// signals kill the process again while connections drain
	cancel()

	// every worker sends exactly one record before Done
	s.drain()
	close(records)
	<-collected

	s.log.Info().Int64("connections", stats.Connections).Msg("server stopped")
	return stats, err
}

// Stop marks the server as shutting down; accept errors from then on end the loop quietly
func (s *Server) Stop() {
	atomic.StoreInt32(&s.stop, 1)
}

func (s *Server) stopping() bool {
	return atomic.LoadInt32(&s.stop) == 1
}

// drain waits for in-flight workers. Once the shutdown grace period is over, the
// connections still open get an expired deadline so that blocked reads and writes fail.
func (s *Server) drain() {
	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	if grace := s.config.ShutdownTimeout; grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-done:
			return
		case <-timer.C:
		}
	}
	if n := s.interruptConns(); n > 0 {
		s.log.Warn().Int("connections", n).Msg("interrupting open connections")
	}
	<-done
}

func (s *Server) trackConn(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.conns, conn)
		return
	}
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
	if s.interrupted {
		conn.SetDeadline(time.Now())
	}
}

// interruptConns expires the deadline of every open connection and returns how many there were
func (s *Server) interruptConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interrupted = true
	now := time.Now()
	for conn := range s.conns {
		conn.SetDeadline(now)
	}
	return len(s.conns)
}

// setDeadline calls set with t unless the connections were interrupted, in which case
// the expired deadline stays in place
func (s *Server) setDeadline(set func(time.Time) error, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interrupted {
		return nil
	}
	return set(t)
}

func (s *Server) acceptLoop(ctx context.Context, l net.Listener, records chan<- connRecord) error {
	var delay time.Duration
	for {
		if s.sem != nil {
			// blocks while MaxConns connections are being served
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
		}
		conn, err := l.Accept()
		if err != nil {
			s.release()
			if s.stopping() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.log.Error().Err(err).Dur("retry_in", delay).Msg("accept failed")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0

		s.workers.Add(1)
		s.trackConn(conn, true)
		go func() {
			defer s.workers.Done()
			defer s.release()
			defer s.trackConn(conn, false)
			records <- s.serveConn(conn)
		}()
	}
}

func (s *Server) release() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}
