// Package kernel implements the message-passing and scheduling core of a
// microkernel: the process table, the multilevel ready queues, the four IPC
// primitives (send, receive, notify, alert), and the system-call dispatcher
// that routes traps into them.
package kernel

import "strconv"

// ProcNr identifies a process table slot.
//
// Negative values are reserved sentinels: NoProc, AnyProc, Hardware, SystemSrc.
type ProcNr int32

// Sentinel process numbers. These never address a real table slot.
const (
	// NoProc marks an absent process (an empty link, an unset sendto/getfrom).
	NoProc ProcNr = -1
	// AnyProc is the wildcard source for RECEIVE and for notify/alert matching.
	AnyProc ProcNr = -2
	// Hardware is the pseudo-source for interrupt notifications.
	Hardware ProcNr = -3
	// SystemSrc is the pseudo-source for kernel-signal notifications.
	SystemSrc ProcNr = -4
)

func (p ProcNr) String() string {
	switch p {
	case NoProc:
		return "none"
	case AnyProc:
		return "any"
	case Hardware:
		return "hardware"
	case SystemSrc:
		return "system"
	default:
		return strconv.Itoa(int(p))
	}
}

// Priority is a ready-queue index. Lower numeric value is higher priority.
type Priority int8

// RTSFlags is a bitmask of run-time-suspension reasons.
//
// A process is runnable exactly when RTS == 0.
type RTSFlags uint8

const (
	// RTSSending marks a process blocked sending to another process.
	RTSSending RTSFlags = 1 << iota
	// RTSReceiving marks a process blocked waiting for a message.
	RTSReceiving
)

// Process is one process-table slot.
//
// caller_q and nextready, which MINIX represents as raw struct-proc
// pointers, are modeled here as ProcNr links into the owning System's
// table: the table is the arena, ProcNr the node index.
type Process struct {
	Nr ProcNr

	RTS         RTSFlags
	Priority    Priority
	MaxPriority Priority

	FullQuantums int
	SchedTicks   int
	QuantumSize  int

	MessBuf *Message
	GetFrom ProcNr
	SendTo  ProcNr

	// CallerQ is the head of the singly linked list of processes blocked
	// sending to this one; QLink is this process's own link field within
	// whichever caller_q it is a member of.
	CallerQ ProcNr
	QLink   ProcNr

	// NextReady links this process within its ready queue.
	NextReady ProcNr

	// NtfQ is the head of the typed-notification list pending for this
	// process (see mini_notify's slow path).
	NtfQ notifyRef

	Priv *Priv

	// Mem is the caller's valid message-buffer range, checked by SysCall.
	Mem MemRegion

	empty bool
}

// IsEmpty reports whether the slot holds no live process.
//
// The core only observes emptiness; creation and destruction of slots is
// the process manager's job.
func (p *Process) IsEmpty() bool { return p == nil || p.empty }

// Runnable reports whether rts_flags == 0.
func (p *Process) Runnable() bool { return p.RTS == 0 }

// IsKernelTask reports whether the process is a kernel task, identified by
// carrying a non-nil stack guard in its privilege record.
func (p *Process) IsKernelTask() bool {
	return p.Priv != nil && p.Priv.StackGuard != nil
}
