package wire

import (
	"testing"

	aris "github.com/soundmetrics/aris-go"
)

func TestAvailabilityRoundTrip(t *testing.T) {
	want := &Availability{
		SerialNumber:    123456,
		SystemType:      aris.SystemTypeAris1800,
		ConnectionState: true,
		HasSerialNumber: true,
	}

	got, err := DecodeAvailability(EncodeAvailability(want))
	if err != nil {
		t.Fatalf("DecodeAvailability: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestAvailabilityBusy(t *testing.T) {
	want := &Availability{
		SerialNumber:    1,
		SystemType:      aris.SystemTypeAris3000,
		ConnectionState: false,
		HasSerialNumber: true,
	}
	got, err := DecodeAvailability(EncodeAvailability(want))
	if err != nil {
		t.Fatalf("DecodeAvailability: %v", err)
	}
	if got.ConnectionState {
		t.Fatalf("ConnectionState should be false for a busy sonar")
	}
}

func TestDecodeAvailabilityMalformed(t *testing.T) {
	if _, err := DecodeAvailability([]byte{0xff}); err == nil {
		t.Fatalf("expected error decoding malformed beacon")
	}
}
