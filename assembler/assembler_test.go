package assembler

import (
	"testing"

	"github.com/soundmetrics/aris-go/wire"
)

func part(fi, off int32, data []byte, header []byte, total int32) *wire.FramePart {
	return &wire.FramePart{
		FrameIndex:    fi,
		DataOffset:    off,
		Header:        header,
		Data:          data,
		TotalDataSize: total,
	}
}

func TestInOrderSingleFrame(t *testing.T) {
	var acks [][2]int32
	var finished []Frame

	a := New(
		func(fi, off int32) { acks = append(acks, [2]int32{fi, off}) },
		func(f Frame) { finished = append(finished, f) },
	)

	header := make([]byte, 8)
	a.ProcessPacket(part(0, 0, make([]byte, 600), header, 1800), nil)
	a.ProcessPacket(part(0, 600, make([]byte, 600), nil, 0), nil)
	a.ProcessPacket(part(0, 1200, make([]byte, 600), nil, 0), nil)

	if len(finished) != 1 {
		t.Fatalf("finished callback fired %d times, want 1", len(finished))
	}
	if !finished[0].Complete {
		t.Fatalf("frame should be complete")
	}
	if got := a.Metrics().Snapshot().CompleteFrameCount; got != 1 {
		t.Fatalf("CompleteFrameCount = %d, want 1", got)
	}

	wantAcks := [][2]int32{{0, 600}, {0, 1200}, {0, 1800}}
	if len(acks) != len(wantAcks) {
		t.Fatalf("acks = %v, want %v", acks, wantAcks)
	}
	for i, w := range wantAcks {
		if acks[i] != w {
			t.Fatalf("ack[%d] = %v, want %v", i, acks[i], w)
		}
	}
}

func TestOutOfOrderThenRecovery(t *testing.T) {
	var acks [][2]int32
	var finished []Frame

	a := New(
		func(fi, off int32) { acks = append(acks, [2]int32{fi, off}) },
		func(f Frame) { finished = append(finished, f) },
	)

	header := make([]byte, 8)
	a.ProcessPacket(part(0, 0, make([]byte, 600), header, 1800), nil)
	a.ProcessPacket(part(0, 1200, make([]byte, 600), nil, 0), nil) // rejected, out of order
	a.ProcessPacket(part(0, 600, make([]byte, 600), nil, 0), nil)  // accepted
	a.ProcessPacket(part(0, 1200, make([]byte, 600), nil, 0), nil) // retry completes

	wantAcks := [][2]int32{{0, 600}, {0, 600}, {0, 1200}, {0, 1800}}
	if len(acks) != len(wantAcks) {
		t.Fatalf("acks = %v, want %v", acks, wantAcks)
	}
	for i, w := range wantAcks {
		if acks[i] != w {
			t.Fatalf("ack[%d] = %v, want %v", i, acks[i], w)
		}
	}

	if len(finished) != 1 || !finished[0].Complete {
		t.Fatalf("finished = %+v, want exactly one complete frame", finished)
	}
}

func TestSkipThenRecovery(t *testing.T) {
	var finished []Frame

	a := New(nil, func(f Frame) { finished = append(finished, f) })

	header := make([]byte, 8)
	a.ProcessPacket(part(0, 0, make([]byte, 600), header, 1800), nil)
	a.ProcessPacket(part(2, 0, make([]byte, 600), header, 1800), nil)

	if len(finished) != 1 {
		t.Fatalf("finished callback fired %d times, want 1", len(finished))
	}
	if finished[0].FrameIndex != 0 || finished[0].Complete {
		t.Fatalf("frame 0 should be retired incomplete, got %+v", finished[0])
	}

	snap := a.Metrics().Snapshot()
	if snap.FinishedFrameCount != 1 {
		t.Fatalf("FinishedFrameCount = %d, want 1", snap.FinishedFrameCount)
	}
	if snap.CompleteFrameCount != 0 {
		t.Fatalf("CompleteFrameCount = %d, want 0", snap.CompleteFrameCount)
	}
	if snap.SkippedFrameCount != 1 {
		t.Fatalf("SkippedFrameCount = %d, want 1 (for frame index 1)", snap.SkippedFrameCount)
	}
}

func TestInvalidPacketCounting(t *testing.T) {
	a := New(nil, nil)
	a.ProcessPacket(nil, wire.ErrMalformed)
	a.ProcessPacket(nil, wire.ErrMalformed)

	snap := a.Metrics().Snapshot()
	if snap.TotalPacketsReceived != 2 {
		t.Fatalf("TotalPacketsReceived = %d, want 2", snap.TotalPacketsReceived)
	}
	if snap.InvalidPacketCount != 2 {
		t.Fatalf("InvalidPacketCount = %d, want 2", snap.InvalidPacketCount)
	}
	if snap.TotalPacketsIgnored != 0 {
		t.Fatalf("TotalPacketsIgnored = %d, want 0 (invalid is a disjoint bucket)", snap.TotalPacketsIgnored)
	}
}

func TestDuplicateLateFrameDroppedSilently(t *testing.T) {
	var ackCount int
	a := New(func(int32, int32) { ackCount++ }, nil)

	header := make([]byte, 8)
	a.ProcessPacket(part(0, 0, make([]byte, 10), header, 10), nil)
	acksAfterFirstFrame := ackCount

	// Frame 0 already completed and was retired; fi=1 starts frame 1.
	a.ProcessPacket(part(1, 0, make([]byte, 10), header, 10), nil)

	// A late duplicate for the already-retired frame 0 must be dropped
	// without sending an ack.
	a.ProcessPacket(part(0, 0, make([]byte, 10), header, 10), nil)

	snap := a.Metrics().Snapshot()
	if snap.TotalPacketsIgnored == 0 {
		t.Fatalf("expected the late duplicate to be counted as ignored")
	}
	// Only frame 1's part was acked after frame 0; the duplicate was not.
	if ackCount != acksAfterFirstFrame+1 {
		t.Fatalf("ackCount = %d, want %d (late duplicate must not be acked)", ackCount, acksAfterFirstFrame+1)
	}
}

func TestPacketAccountingInvariant(t *testing.T) {
	a := New(nil, nil)
	header := make([]byte, 8)

	a.ProcessPacket(part(0, 0, make([]byte, 10), header, 10), nil)
	a.ProcessPacket(nil, wire.ErrMalformed)
	a.ProcessPacket(part(0, 0, make([]byte, 10), header, 10), nil) // late duplicate of the already-retired frame 0

	snap := a.Metrics().Snapshot()
	sum := snap.TotalPacketsAccepted + snap.TotalPacketsIgnored + snap.InvalidPacketCount
	if sum != snap.TotalPacketsReceived {
		t.Fatalf("accepted(%d)+ignored(%d)+invalid(%d) = %d, want totalReceived = %d",
			snap.TotalPacketsAccepted, snap.TotalPacketsIgnored, snap.InvalidPacketCount, sum, snap.TotalPacketsReceived)
	}
}

func TestNonZeroOffsetFirstForNewFrameCountsAsIgnored(t *testing.T) {
	a := New(nil, nil)

	// This part starts a new frame index (fi=0 > currentFrameIndex=-1) but
	// its offset isn't 0, so no builder gets constructed for it; it must
	// still be counted somewhere so the accounting invariant holds.
	a.ProcessPacket(part(0, 600, make([]byte, 600), nil, 0), nil)

	snap := a.Metrics().Snapshot()
	sum := snap.TotalPacketsAccepted + snap.TotalPacketsIgnored + snap.InvalidPacketCount
	if sum != snap.TotalPacketsReceived {
		t.Fatalf("accepted(%d)+ignored(%d)+invalid(%d) = %d, want totalReceived = %d",
			snap.TotalPacketsAccepted, snap.TotalPacketsIgnored, snap.InvalidPacketCount, sum, snap.TotalPacketsReceived)
	}
	if snap.TotalPacketsIgnored != 1 {
		t.Fatalf("TotalPacketsIgnored = %d, want 1", snap.TotalPacketsIgnored)
	}
}

func TestLastFinishedFrameIndexMonotonic(t *testing.T) {
	var finishedIndices []int32
	a := New(nil, func(f Frame) { finishedIndices = append(finishedIndices, f.FrameIndex) })

	header := make([]byte, 8)
	for _, fi := range []int32{0, 1, 3, 3, 5} {
		a.ProcessPacket(part(fi, 0, make([]byte, 10), header, 10), nil)
	}
	a.Flush()

	last := int32(-1)
	for _, idx := range finishedIndices {
		if idx < last {
			t.Fatalf("finished frame indices not monotonic: %v", finishedIndices)
		}
		last = idx
	}
}
