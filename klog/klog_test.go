package klog

import (
	"strings"
	"testing"

	"github.com/Kihui/minix/kernel"
	"github.com/Kihui/minix/kernel/lock"
)

func TestEncodeDecodeLineRoundTrip(t *testing.T) {
	var msg kernel.Message
	EncodeLine(&msg, "scheduler: demoted proc 3 to queue 5")
	if got := DecodeLine(&msg); got != "scheduler: demoted proc 3 to queue 5" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestEncodeLineTruncatesOverlongLine(t *testing.T) {
	var msg kernel.Message
	long := strings.Repeat("x", 200)
	EncodeLine(&msg, long)
	got := DecodeLine(&msg)
	if len(got) != maxLineBytes {
		t.Fatalf("expected truncation to %d bytes, got %d", maxLineBytes, len(got))
	}
}

func TestClientLogDeliversToReceivingLogger(t *testing.T) {
	sys := kernel.NewSystem(4)
	mem := kernel.MemRegion{Lo: 0, Hi: 1 << 20}
	sys.AddProcess(1, 3, &kernel.Priv{SysID: 1}, mem)
	sys.AddProcess(2, 3, &kernel.Priv{SysID: 2}, mem)

	logger := sys.Process(2)
	var inbox kernel.Message
	logger.GetFrom = kernel.AnyProc
	logger.MessBuf = &inbox
	logger.RTS |= kernel.RTSReceiving

	gw := lock.NewGateway(sys)
	client := New(gw, 2)

	caller := sys.Process(1)
	st := client.Log(caller, "hello from task 1")
	if st != kernel.OK {
		t.Fatalf("expected OK, got %s", st)
	}
	if got := DecodeLine(&inbox); got != "hello from task 1" {
		t.Fatalf("logger did not receive line, got %q", got)
	}
}

func TestClientLogNonBlockingWhenLoggerNotReady(t *testing.T) {
	sys := kernel.NewSystem(4)
	mem := kernel.MemRegion{Lo: 0, Hi: 1 << 20}
	sys.AddProcess(1, 3, &kernel.Priv{SysID: 1}, mem)
	sys.AddProcess(2, 3, &kernel.Priv{SysID: 2}, mem)

	gw := lock.NewGateway(sys)
	client := New(gw, 2)

	caller := sys.Process(1)
	st := client.Log(caller, "dropped line")
	if st != kernel.ENotReady {
		t.Fatalf("expected ENotReady, got %s", st)
	}
}
