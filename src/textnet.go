package rtty

/*-------------------------------------------------------------------
 *
 * Purpose:   	Provide decoded text to client applications over TCP.
 *
 * Description:	Anything that can open a TCP socket (telnet, nc, a
 *		logging program) can watch the decoded text.  Every
 *		character goes to every attached client.  Nothing
 *		sent by a client is used; it is read and thrown away
 *		only so we notice when the client goes away.
 *
 *--------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

const MaxTextClients = 3

type TextServer struct {
	mu      sync.Mutex
	clients [MaxTextClients]net.Conn

	listener net.Listener
}

// NewTextServer binds the port.  Use port 0 to let the system pick one (tests).
func NewTextServer(port int) (*TextServer, error) {
	var listener, err = net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("text server listen on port %d: %w", port, err)
	}

	return &TextServer{listener: listener}, nil //nolint:exhaustruct
}

func (s *TextServer) Port() int {
	var addr, _ = s.listener.Addr().(*net.TCPAddr)
	if addr == nil {
		return 0
	}

	return addr.Port
}

/*-------------------------------------------------------------------
 *
 * Name:        Serve
 *
 * Purpose:     Accept client connections until ctx is cancelled.
 *
 * Description:	When all slots are taken, new connections are told so
 *		and closed immediately.
 *
 *--------------------------------------------------------------------*/

func (s *TextServer) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close() //nolint:gosec
	}()

	logger.Info("Ready to accept text client applications", "port", s.Port())

	for {
		var conn, err = s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.closeAll()
				return nil
			}

			logger.Error("Accept failed", "err", err)

			continue
		}

		var client = s.attach(conn)
		if client < 0 {
			logger.Warn("Too many text clients, rejecting", "remote", conn.RemoteAddr())
			fmt.Fprintf(conn, "Too many clients, maximum is %d.\r\n", MaxTextClients)
			conn.Close() //nolint:gosec

			continue
		}

		logger.Info("Attached to text client application", "client", client, "remote", conn.RemoteAddr())

		go s.drain(client, conn)
	}
}

func (s *TextServer) attach(conn net.Conn) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if s.clients[c] == nil {
			s.clients[c] = conn
			return c
		}
	}

	return -1
}

func (s *TextServer) detach(client int, conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients[client] == conn {
		conn.Close() //nolint:gosec
		s.clients[client] = nil
		logger.Info("Text client application detached", "client", client)
	}
}

func (s *TextServer) drain(client int, conn net.Conn) {
	io.Copy(io.Discard, conn) //nolint:errcheck
	s.detach(client, conn)
}

func (s *TextServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c, conn := range s.clients {
		if conn != nil {
			conn.Close() //nolint:gosec
			s.clients[c] = nil
		}
	}
}

// Clients is the number attached right now.
func (s *TextServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n = 0
	for _, conn := range s.clients {
		if conn != nil {
			n++
		}
	}

	return n
}

// Write sends to every client.  A client that fails is disconnected;
// that is not an error for the caller.
func (s *TextServer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c, conn := range s.clients {
		if conn == nil {
			continue
		}

		var _, err = conn.Write(p)
		if err != nil {
			logger.Error("Error sending to text client application, closing connection", "client", c, "err", err)
			conn.Close() //nolint:gosec
			s.clients[c] = nil
		}
	}

	return len(p), nil
}
