package kernel

// Call is a system-call function, the low bits of a call number.
type Call uint8

const (
	Send Call = iota
	Receive
	SendRec
	Notify
	Alert
	Echo
)

func (c Call) String() string {
	switch c {
	case Send:
		return "SEND"
	case Receive:
		return "RECEIVE"
	case SendRec:
		return "SENDREC"
	case Notify:
		return "NOTIFY"
	case Alert:
		return "ALERT"
	case Echo:
		return "ECHO"
	default:
		return "UNKNOWN"
	}
}

// sends is the subset of Call that transports a message to a destination
// (as opposed to only receiving one).
func (c Call) sends() bool {
	return c == Send || c == SendRec || c == Notify || c == Alert
}

// transportsMessage is the subset of Call whose message pointer must pass
// the buffer range check.
func (c Call) transportsMessage() bool {
	return c == Send || c == Receive || c == SendRec || c == Echo
}

// CallNr packs a Call and its SendFlags the way a trap packs call_nr.
type CallNr struct {
	Fn    Call
	Flags SendFlags
}

// SysCall validates and routes one trap: permission check, peer validation,
// message-buffer range check, send-mask check, then dispatch to a
// mini-primitive. It is the single entry point callable from a trap; task
// and interrupt code must go through the kernel/lock gateways instead.
//
// caller is always the currently running process (System.ProcPtr).
func (s *System) SysCall(call CallNr, peer ProcNr, msg *Message) Status {
	caller := s.proc(s.ProcPtr)
	if caller == nil || caller.Priv == nil {
		return EBadSrcDst
	}
	pv := caller.Priv

	if !pv.CanCall(call.Fn) || (s.isKernelTaskN(peer) && call.Fn != SendRec) {
		return ECallDenied
	}

	if call.Fn != Echo && !(s.isOkProcN(peer) || (peer == AnyProc && call.Fn == Receive)) {
		return EBadSrcDst
	}

	if call.Fn.transportsMessage() {
		if !caller.Mem.Contains(bufferPtr(msg)) {
			return EFault
		}
	}

	if call.Fn.sends() {
		// isEmptyN first: an empty slot has no Priv to check a send mask
		// against, and a dead destination should fail as EDeadDst rather
		// than the unrelated ECallDenied a nil Priv would otherwise produce.
		if s.isEmptyN(peer) {
			return EDeadDst
		}
		dstPv := s.privOf(peer)
		if dstPv == nil || !pv.CanSendTo(dstPv.SysID) {
			return ECallDenied
		}
	}

	switch call.Fn {
	case SendRec:
		if st := s.miniSend(caller, peer, msg, call.Flags); st != OK {
			return st
		}
		return s.miniReceive(caller, peer, msg, call.Flags|FreshAnswer)
	case Send:
		return s.miniSend(caller, peer, msg, call.Flags)
	case Receive:
		return s.miniReceive(caller, peer, msg, call.Flags)
	case Alert:
		return s.miniAlert(caller, peer)
	case Notify:
		return s.miniNotify(caller, peer, msg)
	case Echo:
		return OK
	default:
		return EBadCall
	}
}

func (s *System) isKernelTaskN(nr ProcNr) bool {
	p := s.proc(nr)
	return p != nil && !p.IsEmpty() && p.IsKernelTask()
}

func (s *System) privOf(nr ProcNr) *Priv {
	p := s.proc(nr)
	if p == nil {
		return nil
	}
	return p.Priv
}
