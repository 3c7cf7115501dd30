package kernel

import "testing"

// syscallTestSystem wires up a System with caller slot 1 and peer slot 2,
// callMask permitting every Call and a caller SendMask permitting only the
// peer's SysID, unless the test overrides one of those after setup.
func syscallTestSystem(n int) (*System, *Process, *Process) {
	s := testSystem(n)
	caller := s.AddProcess(1, 3, NewPriv(1, FlagPreemptible, ^uint32(0), 8), testMem())
	peer := s.AddProcess(2, 3, NewPriv(2, FlagPreemptible, ^uint32(0), 8), testMem())
	caller.Priv.SendMask.set(int(peer.Priv.SysID))
	s.ProcPtr = caller.Nr
	return s, caller, peer
}

func TestSysCallDeniedByCallMask(t *testing.T) {
	s, caller, peer := syscallTestSystem(4)
	caller.Priv.CallMask = 0

	var msg Message
	st := s.SysCall(CallNr{Fn: Send}, peer.Nr, &msg)
	if st != ECallDenied {
		t.Fatalf("SysCall = %s, want ECallDenied", st)
	}
}

func TestSysCallKernelTaskRequiresSendRec(t *testing.T) {
	s, _, peer := syscallTestSystem(4)
	guard := uint32(0xdeadbeef)
	peer.Priv.StackGuard = &guard

	var msg Message
	if st := s.SysCall(CallNr{Fn: Send}, peer.Nr, &msg); st != ECallDenied {
		t.Fatalf("Send to a kernel task = %s, want ECallDenied", st)
	}
	if st := s.SysCall(CallNr{Fn: SendRec}, peer.Nr, &msg); st != OK {
		t.Fatalf("SendRec to a kernel task = %s, want OK", st)
	}
}

func TestSysCallBadPeerRejected(t *testing.T) {
	s, _, _ := syscallTestSystem(4)

	var msg Message
	st := s.SysCall(CallNr{Fn: Receive}, ProcNr(50), &msg)
	if st != EBadSrcDst {
		t.Fatalf("SysCall = %s, want EBadSrcDst", st)
	}
}

func TestSysCallReceiveAnyProcAllowed(t *testing.T) {
	s, _, _ := syscallTestSystem(4)

	var msg Message
	st := s.SysCall(CallNr{Fn: Receive, Flags: NonBlocking}, AnyProc, &msg)
	if st != ENotReady {
		t.Fatalf("SysCall = %s, want ENotReady", st)
	}
}

func TestSysCallBufferOutOfRangeFaults(t *testing.T) {
	s, caller, peer := syscallTestSystem(4)
	// Hi=2 shifts to click 0, and Contains requires vhi < hi, which no
	// non-negative click value satisfies: every buffer address faults.
	caller.Mem = MemRegion{Lo: 0, Hi: 2}

	var msg Message
	st := s.SysCall(CallNr{Fn: Send}, peer.Nr, &msg)
	if st != EFault {
		t.Fatalf("SysCall = %s, want EFault", st)
	}
}

func TestSysCallDeadDestination(t *testing.T) {
	s, caller, _ := syscallTestSystem(4)
	caller.Priv.SendMask.set(3) // slot 3 is never populated by AddProcess

	var msg Message
	st := s.SysCall(CallNr{Fn: Send}, ProcNr(3), &msg)
	if st != EDeadDst {
		t.Fatalf("SysCall = %s, want EDeadDst", st)
	}
}

func TestSysCallSendMaskDenied(t *testing.T) {
	s, caller, peer := syscallTestSystem(4)
	caller.Priv.SendMask.clear(int(peer.Priv.SysID))

	var msg Message
	st := s.SysCall(CallNr{Fn: Send}, peer.Nr, &msg)
	if st != ECallDenied {
		t.Fatalf("SysCall = %s, want ECallDenied", st)
	}
}

func TestSysCallEchoBypassesPeerValidityCheck(t *testing.T) {
	s, _, _ := syscallTestSystem(4)

	var msg Message
	st := s.SysCall(CallNr{Fn: Echo}, ProcNr(50), &msg)
	if st != OK {
		t.Fatalf("SysCall(Echo) to a nonexistent peer = %s, want OK (ECHO skips the peer check)", st)
	}
}

func TestSysCallSendRecChainsSendAndFreshReceive(t *testing.T) {
	s, caller, peer := syscallTestSystem(4)
	peer.Priv.SendMask.set(int(caller.Priv.SysID))

	var request Message
	if st := s.SysCall(CallNr{Fn: SendRec}, peer.Nr, &request); st != OK {
		t.Fatalf("caller SENDREC = %s, want OK", st)
	}
	if caller.RTS&RTSSending == 0 {
		t.Fatal("expected caller blocked sending after SENDREC's send half")
	}

	var received Message
	s.ProcPtr = peer.Nr
	if st := s.SysCall(CallNr{Fn: Receive}, AnyProc, &received); st != OK {
		t.Fatalf("peer RECEIVE = %s, want OK", st)
	}
	if received.Source != caller.Nr {
		t.Fatalf("peer received from %s, want %s", received.Source, caller.Nr)
	}

	var reply Message
	s.ProcPtr = peer.Nr
	if st := s.SysCall(CallNr{Fn: Send}, caller.Nr, &reply); st != OK {
		t.Fatalf("peer reply SEND = %s, want OK", st)
	}

	s.ProcPtr = caller.Nr
	if !caller.Runnable() {
		t.Fatal("expected SENDREC's blocked send to have completed, caller runnable")
	}
}

func TestSysCallAlertAndNotifyRoundTripThroughSysCall(t *testing.T) {
	s, caller, peer := syscallTestSystem(4)
	peer.Priv.SendMask.set(int(caller.Priv.SysID))

	if st := s.SysCall(CallNr{Fn: Alert}, peer.Nr, nil); st != OK {
		t.Fatalf("SysCall(Alert) = %s, want OK", st)
	}
	if !peer.Priv.NotifyPending.test(int(caller.Priv.SysID)) {
		t.Fatal("expected peer's NotifyPending bit set for caller's SysID")
	}

	var notif Message
	EncodeNotify(&notif, caller.Nr, 9, 0, 42, 0)
	if st := s.SysCall(CallNr{Fn: Notify}, peer.Nr, &notif); st != OK {
		t.Fatalf("SysCall(Notify) = %s, want OK", st)
	}
}

func TestSysCallUnknownCallRejected(t *testing.T) {
	s, _, peer := syscallTestSystem(4)

	var msg Message
	st := s.SysCall(CallNr{Fn: Call(99)}, peer.Nr, &msg)
	if st != ECallDenied {
		t.Fatalf("SysCall with an unrecognized call bit = %s, want ECallDenied (CanCall rejects an unset bit first)", st)
	}
}
