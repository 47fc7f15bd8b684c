// Package demo provides a minimal, fully wired Transport and hook set
// for the handshake-demo CLI: a two-message loopback exchange (a
// hello and a hello-ack) carried over a net.Conn, framed as
// [1-byte type][4-byte big-endian length][body]. It exists to prove
// out internal/statem end to end, not to implement any real wire
// protocol.
package demo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/alxayo/go-handshake/internal/config"
	"github.com/alxayo/go-handshake/internal/statem"
)

const (
	// MsgHello is sent by the client to open the exchange.
	MsgHello statem.MessageType = iota + 1
	// MsgHelloAck is sent by the server in response.
	MsgHelloAck
)

// Transport implements statem.Transport over a single net.Conn. Reads
// block until a full frame arrives or the connection errors; this
// demo never exercises the WOULD_BLOCK suspend path (that is covered
// by internal/statem's own tests against a scriptable fake).
type Transport struct {
	conn   net.Conn
	reader *bufio.Reader
	policy *config.Policy

	pendingType    statem.MessageType
	pendingPayload []byte

	lastType statem.MessageType
	lastBody []byte
	bodyLeft uint32
}

// NewTransport wraps conn for use by one Session.
func NewTransport(conn net.Conn) *Transport {
	return &Transport{conn: conn, reader: bufio.NewReader(conn)}
}

// SetPolicy installs the driver policy ValidateVersion enforces. A nil
// policy (the default) accepts any role.
func (t *Transport) SetPolicy(p *config.Policy) { t.policy = p }

func (t *Transport) IsDatagram() bool { return false }
func (t *Transport) IsSCTP() bool     { return false }

// ValidateVersion rejects a non-stream transport family, the only
// thing the loopback framing in this file knows how to carry.
func (t *Transport) ValidateVersion(statem.Role) error {
	if t.policy != nil && t.policy.Transport.Family != "stream" {
		return fmt.Errorf("demo transport: policy requires %q transport, this demo only carries stream", t.policy.Transport.Family)
	}
	return nil
}

func (t *Transport) InitBuffers(*statem.Session) error { return nil }

func (t *Transport) MaxPlaintextLen() int { return 4096 }

// SetOutgoing stages the next message for WriteRecord. Called by a
// ConstructMessage hook.
func (t *Transport) SetOutgoing(mt statem.MessageType, payload []byte) {
	t.pendingType = mt
	t.pendingPayload = payload
}

// LastMessage returns the most recently fully-read message. Called by
// the server's PostProcessMessage hook.
func (t *Transport) LastMessage() (statem.MessageType, []byte) {
	return t.lastType, t.lastBody
}

func (t *Transport) ReadMessageHeader(*statem.Session) (statem.MessageType, uint64, bool, error) {
	var header [5]byte
	if _, err := io.ReadFull(t.reader, header[:]); err != nil {
		return 0, 0, false, fmt.Errorf("demo transport: reading header: %w", err)
	}
	t.lastType = statem.MessageType(header[0])
	t.bodyLeft = binary.BigEndian.Uint32(header[1:])
	return t.lastType, uint64(t.bodyLeft), true, nil
}

func (t *Transport) ReadMessageBody(*statem.Session) (uint64, bool, error) {
	body := make([]byte, t.bodyLeft)
	if t.bodyLeft > 0 {
		if _, err := io.ReadFull(t.reader, body); err != nil {
			return 0, false, fmt.Errorf("demo transport: reading body: %w", err)
		}
	}
	t.lastBody = body
	return uint64(len(body)), true, nil
}

func (t *Transport) WriteRecord(*statem.Session, bool) (bool, error) {
	var header [5]byte
	header[0] = byte(t.pendingType)
	binary.BigEndian.PutUint32(header[1:], uint32(len(t.pendingPayload)))

	if _, err := t.conn.Write(header[:]); err != nil {
		return false, fmt.Errorf("demo transport: writing header: %w", err)
	}
	if len(t.pendingPayload) > 0 {
		if _, err := t.conn.Write(t.pendingPayload); err != nil {
			return false, fmt.Errorf("demo transport: writing body: %w", err)
		}
	}
	return true, nil
}

func (t *Transport) SendAlert(_ *statem.Session, level statem.AlertLevel, desc statem.AlertDescription) error {
	_ = level
	_ = desc
	return nil
}

func (t *Transport) TimerStart(*statem.Session) {}
func (t *Transport) TimerStop(*statem.Session)  {}

var _ statem.Transport = (*Transport)(nil)
