package kernel

import "testing"

func TestMemRegionContainsClickGranularity(t *testing.T) {
	region := MemRegion{Lo: 0, Hi: 4 << ClickShift}

	inside := uintptr(3 << ClickShift)
	if !region.Contains(inside) {
		t.Fatalf("expected %#x inside [%#x,%#x)", inside, region.Lo, region.Hi)
	}

	outside := uintptr(10 << ClickShift)
	if region.Contains(outside) {
		t.Fatalf("expected %#x outside region", outside)
	}
}

func TestMemRegionRejectsBufferCrossingUpperBound(t *testing.T) {
	region := MemRegion{Lo: 0, Hi: 1 << ClickShift}
	// A buffer whose last byte's click falls at or past Hi's click is
	// rejected even though its first byte's click is in range.
	ptr := uintptr((1 << ClickShift) - 4)
	if region.Contains(ptr) {
		t.Fatalf("expected buffer tail crossing Hi's click to be rejected")
	}
}
