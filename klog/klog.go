// Package klog is the kernel's self-diagnostic log client: a thin
// send-only wrapper that packs a line of text into a Message and ships it
// to a well-known logger task over the same send primitive user code uses,
// the way sparkos/client/logger routes log lines through a capability
// rather than a host-side writer.
//
// It exists because the kernel core has no console or file descriptor of
// its own; anything the scheduler or IPC layer wants to report travels as
// an ordinary message to the logger task a Client was created with.
package klog

import (
	"encoding/binary"

	"github.com/Kihui/minix/kernel"
	"github.com/Kihui/minix/kernel/lock"
)

// LineType is the Message.Type carried by a log record, chosen well away
// from the notification/alert type space the kernel synthesizes for itself.
const LineType uint32 = 0x4c4f4731 // "LOG1"

// maxLineBytes is how much of a line fits in one Message body once the
// 2-byte length prefix is subtracted.
const maxLineBytes = kernel.MessSize - 2

// EncodeLine packs line into m as a length-prefixed UTF-8 byte run,
// truncating if it would overflow the body.
func EncodeLine(m *kernel.Message, line string) {
	b := []byte(line)
	if len(b) > maxLineBytes {
		b = b[:maxLineBytes]
	}
	m.Type = LineType
	binary.LittleEndian.PutUint16(m.Body[0:], uint16(len(b)))
	copy(m.Body[2:], b)
}

// DecodeLine reverses EncodeLine.
func DecodeLine(m *kernel.Message) string {
	n := binary.LittleEndian.Uint16(m.Body[0:])
	if int(n) > maxLineBytes {
		n = maxLineBytes
	}
	return string(m.Body[2 : 2+n])
}

// Client sends log lines from one process to a fixed logger task.
type Client struct {
	gw     *lock.Gateway
	logger kernel.ProcNr
}

// New returns a Client that routes lines to logger through gw.
func New(gw *lock.Gateway, logger kernel.ProcNr) *Client {
	return &Client{gw: gw, logger: logger}
}

// Log sends one line from caller to the logger task. The send is
// non-blocking: a full or not-yet-receiving logger yields ENotReady rather
// than stalling the caller, a best-effort delivery that may drop a line
// rather than stall the kernel.
func (c *Client) Log(caller *kernel.Process, line string) kernel.Status {
	var msg kernel.Message
	EncodeLine(&msg, line)
	return c.gw.LockSend(caller, c.logger, &msg, kernel.NonBlocking)
}
