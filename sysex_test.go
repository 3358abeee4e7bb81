package main

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"sidpatchmcp/patch"
)

func TestRegisterDumpRoundTrip(t *testing.T) {
	s := patch.DefaultSettings()
	s.ID = 99
	s.Name = "LEADSYNC" // full 8 characters
	s.Oscillators[0].Waveform = 4
	s.Oscillators[1].Attack = 5
	s.Oscillators[1].Decay = 3
	s.Cutoff = 2047
	s.Mode = 3

	regs := patch.Compile(&s)

	msg, err := EncodeDump(0x05, s.ID, s.Name, regs)
	if err != nil {
		t.Fatalf("failed to encode dump: %v", err)
	}

	raw := msg.Bytes()
	if len(raw) != dumpSize {
		t.Fatalf("expected %d bytes, got %d", dumpSize, len(raw))
	}
	if raw[0] != 0xF0 || raw[len(raw)-1] != 0xF7 {
		t.Errorf("dump is not framed as SysEx: % X", raw)
	}
	for i, b := range raw[1 : len(raw)-1] {
		if b > 0x7F {
			t.Errorf("data byte %d is 0x%02X, not 7-bit", i+1, b)
		}
	}

	d, err := DecodeDump(msg)
	if err != nil {
		t.Fatalf("failed to decode dump: %v", err)
	}
	if d.DeviceID != 0x05 {
		t.Errorf("expected device 0x05, got 0x%02X", d.DeviceID)
	}
	if d.PatchID != 99 {
		t.Errorf("expected patch id 99, got %d", d.PatchID)
	}
	if d.Name != "LEADSYNC" {
		t.Errorf("expected patch name %q, got %q", "LEADSYNC", d.Name)
	}
	if d.Registers != regs {
		t.Errorf("register mismatch:\n got  %v\n want %v", d.Registers, regs)
	}
}

func TestRegisterDumpShortName(t *testing.T) {
	msg, err := EncodeDump(0, 1, "PAD", patch.Registers{})
	if err != nil {
		t.Fatalf("failed to encode dump: %v", err)
	}
	d, err := DecodeDump(msg)
	if err != nil {
		t.Fatalf("failed to decode dump: %v", err)
	}
	if d.Name != "PAD" {
		t.Errorf("expected patch name %q, got %q", "PAD", d.Name)
	}
}

func TestEncodeDumpRejects(t *testing.T) {
	var regs patch.Registers
	if _, err := EncodeDump(0x80, 0, "X", regs); err == nil {
		t.Errorf("expected error for 8-bit device id")
	}
	if _, err := EncodeDump(0, 128, "X", regs); err == nil {
		t.Errorf("expected error for patch id 128")
	}
	if _, err := EncodeDump(0, 0, "NINECHARS", regs); err == nil {
		t.Errorf("expected error for 9 character name")
	}
	if _, err := EncodeDump(0, 0, "caf\xe9", regs); err == nil {
		t.Errorf("expected error for non 7-bit name")
	}
}

func TestDecodeDumpRejects(t *testing.T) {
	s := patch.DefaultSettings()
	msg, err := EncodeDump(0, 3, "INIT", patch.Compile(&s))
	if err != nil {
		t.Fatalf("failed to encode dump: %v", err)
	}
	good := msg.Bytes()

	corrupt := func(f func(b []byte) []byte) midi.Message {
		b := make([]byte, len(good))
		copy(b, good)
		return midi.Message(f(b))
	}

	tests := []struct {
		name string
		msg  midi.Message
	}{
		{"note on", midi.NoteOn(0, 60, 100)},
		{"truncated", corrupt(func(b []byte) []byte { return append(b[:20], 0xF7) })},
		{"manufacturer", corrupt(func(b []byte) []byte { b[1] = 0x3E; return b })},
		{"command", corrupt(func(b []byte) []byte { b[3] = 0x11; return b })},
		{"checksum", corrupt(func(b []byte) []byte { b[4] ^= 0x01; return b })},
		{"nibble", corrupt(func(b []byte) []byte {
			i := 4 + 1 + patch.NameLen
			b[i] = 0x10
			b[len(b)-2] = 0x7F
			return b
		})},
	}

	for _, tt := range tests {
		if _, err := DecodeDump(tt.msg); err == nil {
			t.Errorf("%s: expected decode error", tt.name)
		}
	}
}

func TestDecodeDumpSkipsChecksum(t *testing.T) {
	s := patch.DefaultSettings()
	s.Resonance = 7
	regs := patch.Compile(&s)

	msg, err := EncodeDump(0, 0, "", regs)
	if err != nil {
		t.Fatalf("failed to encode dump: %v", err)
	}
	b := msg.Bytes()
	b[len(b)-2] = 0x7F

	d, err := DecodeDump(midi.Message(b))
	if err != nil {
		t.Fatalf("0x7F checksum should be accepted: %v", err)
	}
	if d.Registers != regs {
		t.Errorf("register mismatch with unchecked checksum")
	}
}
