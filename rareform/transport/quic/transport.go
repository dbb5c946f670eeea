// Package quic provides QUIC stream endpoints for network copies, so
// the same copy primitive that moves bytes between files can move them
// between hosts.
package quic

import (
	"context"
	"net"

	q "github.com/quic-go/quic-go"
)

// Listener accepts incoming copy connections.
type Listener struct {
	inner *q.Listener
}

// Listen starts a listener on addr with a fresh self-signed TLS
// config. Peer authentication, when needed, belongs to the sealed-copy
// layer, not the transport.
func Listen(addr string) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

// Accept waits for the next connection.
func (l *Listener) Accept(ctx context.Context) (q.Connection, error) {
	return l.inner.Accept(ctx)
}

// Addr returns the listener's local address.
func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

// AddrString returns the listener's local address as a string, or ""
// when the listener is not running.
func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

// Close stops the listener.
func (l *Listener) Close() error { return l.inner.Close() }

// Dial connects to a remote listener.
func Dial(ctx context.Context, addr string) (q.Connection, error) {
	tlsConf, err := NewClientTLSConfig()
	if err != nil {
		return nil, err
	}
	return q.DialAddr(ctx, addr, tlsConf, &q.Config{})
}
