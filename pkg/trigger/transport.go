package trigger

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/aretw0/cadence/pkg/ports"
)

// UDPTransport sends each marker as one datagram to a fixed endpoint.
// The socket is opened once and reused for every send.
type UDPTransport struct {
	conn *net.UDPConn
	addr string
}

var _ ports.Transport = (*UDPTransport)(nil)

// DialUDP opens the datagram channel to host:port.
func DialUDP(host string, port int) (*UDPTransport, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trigger endpoint %s: %w", addr, err)
	}

	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open trigger socket to %s: %w", addr, err)
	}

	return &UDPTransport{conn: conn, addr: addr}, nil
}

// Addr returns the configured endpoint.
func (t *UDPTransport) Addr() string {
	return t.addr
}

// Send writes payload as a single datagram. There is no acknowledgment or retry.
func (t *UDPTransport) Send(ctx context.Context, payload []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	if _, err := t.conn.Write(payload); err != nil {
		return fmt.Errorf("udp send to %s: %w", t.addr, err)
	}
	return nil
}

// Close releases the socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// DiscardTransport accepts every marker and sends nothing.
// It backs dry runs where no recording apparatus is attached.
type DiscardTransport struct{}

var _ ports.Transport = DiscardTransport{}

func (DiscardTransport) Send(context.Context, []byte) error { return nil }
func (DiscardTransport) Close() error                       { return nil }
