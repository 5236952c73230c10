// Package assembler implements the sliding-window reassembly state machine
// that turns a stream of arriving frame-parts back into complete frames
// (§4.5). It has no socket of its own; callers feed it decoded
// wire.FramePart values and supply the ack/completion hooks.
package assembler

import (
	"sync"

	aris "github.com/soundmetrics/aris-go"
	"github.com/soundmetrics/aris-go/wire"
)

// Frame is a fully reassembled frame handed to the completion callback.
type Frame struct {
	FrameIndex int32
	Header     []byte
	Data       []byte
	Complete   bool
}

// AckSender is invoked after every processed packet, accepted or rejected,
// with the frame index and the assembler's next-expected offset. It is not
// invoked for a packet that failed to decode, for a malformed first part, or
// for a late duplicate of an already-retired frame.
type AckSender func(frameIndex, expectedDataOffset int32)

// FrameSink is invoked whenever a frame is retired, complete or not.
type FrameSink func(Frame)

// Assembler is the sliding-window reassembler described in §4.5. The zero
// value is not usable; construct with New.
//
// The source's ProcessPacket/Flush pair shares a re-entrant mutex because
// ProcessPacket internally calls Flush. Go's sync.Mutex isn't re-entrant,
// so the same effect is reached structurally instead: mu is acquired once
// at the two public entry points (ProcessPacket, Flush), and all internal
// flushing goes through the unexported flushLocked, which never locks.
type Assembler struct {
	mu sync.Mutex

	currentFrameIndex     int32
	lastFinishedFrameIndex int32
	expectedDataOffset    int32
	currentFrame          *aris.FrameBuilder

	sendAck        AckSender
	onFrameFinished FrameSink

	metrics *Metrics
}

// New constructs an Assembler. sendAck and onFrameFinished may be nil; a
// nil hook is replaced with a no-op so callers that don't care
// about one side (e.g. tests) don't have to supply a stub.
func New(sendAck AckSender, onFrameFinished FrameSink) *Assembler {
	if sendAck == nil {
		sendAck = func(int32, int32) {}
	}
	if onFrameFinished == nil {
		onFrameFinished = func(Frame) {}
	}
	return &Assembler{
		currentFrameIndex:      -1,
		lastFinishedFrameIndex: -1,
		sendAck:                sendAck,
		onFrameFinished:        onFrameFinished,
		metrics:                NewMetrics(),
	}
}

// Metrics returns the assembler's cumulative counters.
func (a *Assembler) Metrics() *Metrics { return a.metrics }

// ProcessPacket consumes one already-decoded frame-part, or a decode
// failure (decodeErr != nil) for a datagram that failed to parse.
func (a *Assembler) ProcessPacket(part *wire.FramePart, decodeErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.totalPacketsReceived.Add(1)

	if decodeErr != nil {
		// invalidPacketCount and totalPacketsIgnored are kept mutually
		// exclusive so totalPacketsReceived == accepted+ignored+invalid
		// holds as a strict partition, not a double-counted overlap.
		a.metrics.invalidPacketCount.Add(1)
		return
	}

	fi := part.FrameIndex

	if fi > a.currentFrameIndex {
		a.flushLocked()
		a.metrics.skippedFrameCount.Add(uint64(fi - a.currentFrameIndex - 1))
		a.currentFrameIndex = fi
		a.expectedDataOffset = 0
	} else if fi <= a.lastFinishedFrameIndex {
		a.metrics.totalPacketsIgnored.Add(1)
		return
	}

	if a.currentFrame == nil {
		if part.DataOffset == 0 {
			builder, err := aris.NewFrameBuilder(fi, part.Header, part.Data, int(part.TotalDataSize))
			if err != nil {
				// Malformed first part: counts as invalid, matching the
				// generic decode-failure path (§4.5 edge cases); no ack.
				a.metrics.invalidPacketCount.Add(1)
				return
			}
			a.currentFrame = builder
			a.expectedDataOffset = int32(builder.BytesReceived())
			a.metrics.totalPacketsAccepted.Add(1)
		} else {
			// No builder yet and this isn't the first part; rejected, same
			// as any other out-of-order part. The ack below carries
			// expectedDataOffset == 0 and thus prompts the sender to
			// retransmit part 0.
			a.metrics.totalPacketsIgnored.Add(1)
		}
	} else if part.DataOffset == a.expectedDataOffset {
		n := a.currentFrame.Append(int(part.DataOffset), part.Data)
		a.expectedDataOffset += int32(n)
		a.metrics.totalPacketsAccepted.Add(1)
	} else {
		a.metrics.totalPacketsIgnored.Add(1)
	}

	a.sendAck(fi, a.expectedDataOffset)

	if a.currentFrame != nil && a.expectedDataOffset == int32(a.currentFrame.ExpectedSize()) {
		a.flushLocked()
	}
}

// Flush retires the in-progress frame, if any, without waiting for it to
// complete. Safe to call from outside ProcessPacket (e.g. on a timer or on
// listener shutdown).
func (a *Assembler) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flushLocked()
}

func (a *Assembler) flushLocked() {
	if a.currentFrame == nil {
		return
	}
	b := a.currentFrame
	a.currentFrame = nil

	frame := Frame{
		FrameIndex: b.FrameIndex(),
		Header:     b.TakeHeader(),
		Data:       b.TakeFrameData(),
		Complete:   b.IsComplete(),
	}

	a.metrics.uniqueFrameIndexCount.Add(1)
	a.metrics.finishedFrameCount.Add(1)
	if frame.Complete {
		a.metrics.completeFrameCount.Add(1)
	}
	a.metrics.totalExpectedFrameSize.Add(uint64(b.ExpectedSize()))
	a.metrics.totalReceivedFrameSize.Add(uint64(b.BytesReceived()))

	a.lastFinishedFrameIndex = frame.FrameIndex

	a.onFrameFinished(frame)
}
