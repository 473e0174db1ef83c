// Package server implements the TCP request/response server: it accepts
// connections sequentially and, for each one, decodes a stream of requests,
// dispatches them to an engine.Engine, and encodes the matching responses.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"kvs/internal/codec"
	"kvs/internal/engine"
	"kvs/internal/protocol"
)

// Server dispatches decoded requests to a single engine.Engine instance.
type Server struct {
	engine engine.Engine
	logger *zap.Logger
}

// New returns a Server backed by eng.
func New(eng engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: eng, logger: logger}
}

// Run binds addr and serves connections until the listener fails or accept
// is interrupted.
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	defer ln.Close()
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ln)
}

// Serve accepts and serves connections off ln until Accept fails.
// Connections are accepted and served one at a time — the server never
// spawns a goroutine per connection, so a slow client blocks everyone behind
// it. Keeping the model single-threaded matches the storage engine, which
// holds no internal locking of its own.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("server: accept: %w", err)
		}
		if err := s.serve(conn); err != nil {
			s.logger.Error("serving client", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
		}
	}
}

func (s *Server) serve(conn net.Conn) error {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	dec := codec.NewDecoder(reader)

	for {
		var req protocol.Request
		if _, err := dec.Next(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}

		var resp any
		switch {
		case req.Get != nil:
			value, ok, err := s.engine.Get(req.Get.Key)
			if err != nil {
				resp = protocol.ErrGet(err.Error())
			} else {
				resp = protocol.OkGet(value, ok)
			}
		case req.Set != nil:
			if err := s.engine.Set(req.Set.Key, req.Set.Value); err != nil {
				resp = protocol.ErrSet(err.Error())
			} else {
				resp = protocol.OkSet()
			}
		case req.Remove != nil:
			if err := s.engine.Remove(req.Remove.Key); err != nil {
				resp = protocol.ErrRemove(err.Error())
			} else {
				resp = protocol.OkRemove()
			}
		default:
			return fmt.Errorf("decode request: empty request")
		}

		b, err := codec.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if _, err := writer.Write(b); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
}
