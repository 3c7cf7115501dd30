package kernel

import "encoding/binary"

// MessSize is the fixed payload size of a Message body, in bytes.
const MessSize = 64

// Message is the fixed-size IPC envelope copied between a sender's and a
// receiver's buffer.
type Message struct {
	Source ProcNr
	Type   uint32
	Body   [MessSize]byte
}

// The notify*Off offsets are the body layout used for synthesized notification
// messages: NOTIFY_SOURCE is carried in Message.Source, NOTIFY_TYPE in
// Message.Type; the remaining fields are little-endian fixed-offset
// encoded into Body.
const (
	notifyFlagsOff     = 0
	notifyArgOff       = 4
	notifyTimestampOff = 8
)

// EncodeNotify fills m with a synthesized notification from src, carrying
// flags, arg and the kernel timestamp at which it was built.
func EncodeNotify(m *Message, src ProcNr, typ uint32, flags, arg uint32, timestamp uint64) {
	m.Source = src
	m.Type = typ
	binary.LittleEndian.PutUint32(m.Body[notifyFlagsOff:], flags)
	binary.LittleEndian.PutUint32(m.Body[notifyArgOff:], arg)
	binary.LittleEndian.PutUint64(m.Body[notifyTimestampOff:], timestamp)
}

// DecodeNotify reads back the fields EncodeNotify wrote.
func DecodeNotify(m *Message) (flags, arg uint32, timestamp uint64) {
	flags = binary.LittleEndian.Uint32(m.Body[notifyFlagsOff:])
	arg = binary.LittleEndian.Uint32(m.Body[notifyArgOff:])
	timestamp = binary.LittleEndian.Uint64(m.Body[notifyTimestampOff:])
	return
}

func copyMessage(dst, src *Message) {
	*dst = *src
}
