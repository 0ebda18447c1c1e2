package framework

import (
	"errors"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/taoxinyi/ruad/framework/wire"
	"io"
	"net"
	"os"
	"time"
)

// serveConn runs one request/response cycle on conn and closes it.
// The connection is closed on every path, including a recovered panic.
func (s *Server) serveConn(conn net.Conn) (rec connRecord) {
	start := time.Now()
	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("connection worker panicked")
			rec.outcome = outcomePanic
		}
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("close failed")
		}
		rec.latency = time.Since(start)
	}()

	if s.config.ReadTimeout > 0 {
		if err := s.setDeadline(conn.SetReadDeadline, start.Add(s.config.ReadTimeout)); err != nil {
			log.Warn().Err(err).Msg("setting read deadline")
			rec.outcome = outcomeIOError
			return rec
		}
	}
	raw, err := wire.ReadMessage(conn, s.config.ReadBufferSize, s.config.MaxRequestSize)
	rec.bytesRecv = len(raw)
	if errors.Is(err, wire.Empty) {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			log.Debug().Msg("no request before the read deadline")
		} else {
			log.Debug().Err(err).Msg("peer closed before sending a request")
		}
		rec.outcome = outcomeDropped
		return rec
	}

	var resp *wire.Response
	var req *wire.Request
	if err == nil {
		req, err = wire.Parse(raw, s.limits)
	}
	if err != nil {
		log.Info().Err(err).Msg("bad request")
		resp = wire.BadRequest()
	} else {
		resp = s.resolver.Resolve(req.Path)
	}

	out := wire.Serialize(resp)
	if s.config.WriteTimeout > 0 {
		if err := s.setDeadline(conn.SetWriteDeadline, time.Now().Add(s.config.WriteTimeout)); err != nil {
			log.Warn().Err(err).Msg("setting write deadline")
			rec.outcome = outcomeIOError
			return rec
		}
	}
	n, err := write(conn, out)
	rec.bytesSent = n
	if err != nil {
		log.Warn().Err(err).Int("written", n).Int("size", len(out)).Msg("write failed")
		rec.outcome = outcomeIOError
		return rec
	}

	rec.outcome = outcomeServed
	rec.statusCode = resp.StatusCode
	accessLog(log, req, resp, n, time.Since(start))
	return rec
}

func accessLog(log zerolog.Logger, req *wire.Request, resp *wire.Response, sent int, latency time.Duration) {
	event := log.Info()
	if req != nil {
		event = event.Str("method", req.Method).Str("path", req.Path).Str("proto", req.Version)
	}
	event.Int("status", resp.StatusCode).
		Str("sent", humanize.IBytes(uint64(sent))).
		Dur("latency", latency).
		Msg("served")
}

// write is used to write bytes b to w
// It will keep writing until all bytes in len(b) is written or error occurs
func write(w io.Writer, b []byte) (n int, err error) {
	for n < len(b) {
		written, err := w.Write(b[n:])
		n += written
		if err != nil {
			return n, err
		}
		if written == 0 {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}
