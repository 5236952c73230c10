package aris

// chRvMult precomputes ChannelReversalMap[k] * pingsPerFrame for a given
// ping mode, matching the source's chRvMultMap.
func chRvMult(pingsPerFrame int32) [BeamsPerPing]int32 {
	var out [BeamsPerPing]int32
	for k, ch := range ChannelReversalMap {
		out[k] = ch * pingsPerFrame
	}
	return out
}

// Reorder transforms samples from the device's channel-interleaved layout
// into the canonical beam-major layout described in §4.3. samples must be
// exactly pingMode.Beams() * samplesPerBeam bytes.
//
// If h.ReorderedSamples is already nonzero, Reorder is a no-op: it is an
// involution only modulo that flag, never on the raw bytes themselves.
func Reorder(h *FrameHeader, samples []byte) error {
	if h.ReorderedSamples != 0 {
		return nil
	}

	pingMode := PingMode(h.PingMode)
	if !pingMode.Valid() {
		return ErrInvalidPingMode
	}

	p := int32(pingMode.PingsPerFrame())
	n := int32(pingMode.Beams())
	s := int32(h.SamplesPerBeam)

	want := int(n * s)
	if len(samples) != want {
		return ErrMalformedWirePacket
	}

	mult := chRvMult(p)

	in := make([]byte, len(samples))
	copy(in, samples)

	for pingIdx := int32(0); pingIdx < p; pingIdx++ {
		for sampleIdx := int32(0); sampleIdx < s; sampleIdx++ {
			composed := sampleIdx*n + pingIdx
			base := (pingIdx*s + sampleIdx) * BeamsPerPing
			for k := int32(0); k < BeamsPerPing; k++ {
				samples[composed+mult[k]] = in[base+k]
			}
		}
	}

	h.ReorderedSamples = 1
	return nil
}
