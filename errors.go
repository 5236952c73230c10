package aris

import "errors"

// Error taxonomy (spec §7). These are the sentinel values the rest of the
// module wraps for context with fmt.Errorf("%w: %v", ...).
var (
	// ErrMalformedWirePacket is returned when a frame or file header cannot
	// be decoded, and by Reorder for a sample buffer of the wrong length.
	// The wire package's beacon and frame-part decoders return
	// wire.ErrMalformed instead.
	ErrMalformedWirePacket = errors.New("aris: malformed wire packet")

	// ErrMalformedFirstPart is returned by NewFrameBuilder when its
	// preconditions (frameIndex >= 0, non-empty header) are violated.
	ErrMalformedFirstPart = errors.New("aris: malformed first frame part")

	// ErrConnect is returned by connection.Dial when the TCP command
	// connection cannot be established.
	ErrConnect = errors.New("aris: connect failed")

	// ErrControlChannelFailure marks a command-session send failure.
	// connection.Dial returns it wrapped when a command of the initial setup
	// sequence fails to send; later send failures only set the session's
	// sticky flag, read with command.Session.HasConnectionError.
	ErrControlChannelFailure = errors.New("aris: control channel failure")

	// ErrFileIO marks a recording-writer failure; the writer rewinds to the
	// last known-good frame boundary and returns an error wrapping
	// ErrFileIO.
	ErrFileIO = errors.New("aris: recording file I/O error")

	// ErrInvalidPingMode is returned wherever a PingMode fails Valid().
	ErrInvalidPingMode = errors.New("aris: invalid ping mode")

	// ErrClosed marks an operation attempted on an already-closed listener
	// or session; callers should treat it like the source's cancelled I/O
	// completions and absorb it quietly on shutdown paths.
	ErrClosed = errors.New("aris: closed")
)
