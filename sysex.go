package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"

	"sidpatchmcp/patch"
)

// Register dump frame:
//
//	F0 7D dev 10 id name[8] (hi lo)*25 chk F7
//
// SysEx data bytes are 7-bit, so each register travels as two nibbles.
const (
	sysexManufacturer = 0x7D // non-commercial / educational id
	sysexRegisterDump = 0x10

	dumpDataSize = 1 + patch.NameLen + 2*patch.RegisterCount
	dumpSize     = 4 + dumpDataSize + 2
)

func dumpBytes(data []byte, label string) {
	f := os.Stderr

	fmt.Fprintf(f, "Dumping %d bytes of %s:\n", len(data), label)

	for i, b := range data {
		fmt.Fprintf(f, "%d 0x%02X\n", i, b)
	}
}

// RegisterDump is the decoded content of a register dump frame.
type RegisterDump struct {
	DeviceID  byte
	PatchID   int
	Name      string
	Registers patch.Registers
}

func checksum(data []byte) byte {
	var chk byte
	for _, b := range data {
		chk = (chk + b) & 0x7F
	}
	return chk
}

// EncodeDump frames a register image for the transport.
func EncodeDump(deviceID byte, patchID int, name string, regs patch.Registers) (midi.Message, error) {
	if deviceID > 0x7F {
		return nil, errors.Errorf("device id 0x%02X is not 7-bit", deviceID)
	}
	if patchID < 0 || patchID > 0x7F {
		return nil, errors.Errorf("patch id must be in range 0-127, got %d", patchID)
	}
	if len(name) > patch.NameLen {
		return nil, errors.Errorf("patch name %q longer than %d characters", name, patch.NameLen)
	}

	data := make([]byte, 0, dumpDataSize)
	data = append(data, byte(patchID))

	nameBytes := make([]byte, patch.NameLen)
	for i := 0; i < len(name); i++ {
		if name[i] > 0x7F {
			return nil, errors.Errorf("patch name %q is not 7-bit ASCII", name)
		}
		nameBytes[i] = name[i]
	}
	data = append(data, nameBytes...)

	for _, r := range regs.Bytes() {
		data = append(data, r>>4, r&0x0F)
	}

	out := []byte{0xF0, sysexManufacturer, deviceID, sysexRegisterDump}
	out = append(out, data...)
	out = append(out, checksum(data), 0xF7)

	return midi.Message(out), nil
}

// ParseDump reads a frame written as hex bytes, as printed by the sysex
// command. Whitespace between bytes is ignored.
func ParseDump(text string) (midi.Message, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, errors.Wrap(err, "parsing hex dump")
	}
	return midi.Message(raw), nil
}

// DecodeDump parses a register dump frame. A checksum of 0x7F is accepted
// without verification.
func DecodeDump(msg midi.Message) (*RegisterDump, error) {
	if !msg.Is(midi.SysExMsg) {
		return nil, errors.New("message is not a SysEx frame")
	}

	raw := msg.Bytes()
	if len(raw) != dumpSize {
		return nil, errors.Errorf("unexpected dump size %d (want %d)", len(raw), dumpSize)
	}
	if raw[0] != 0xF0 || raw[len(raw)-1] != 0xF7 {
		return nil, errors.New("message is not a SysEx frame")
	}
	if raw[1] != sysexManufacturer {
		return nil, errors.Errorf("unexpected manufacturer id 0x%02X", raw[1])
	}
	if raw[3] != sysexRegisterDump {
		return nil, errors.Errorf("unexpected message type 0x%02X (expected register dump 0x%02X)", raw[3], sysexRegisterDump)
	}

	data := raw[4 : 4+dumpDataSize]
	chk := raw[4+dumpDataSize]
	if chk != 0x7F && checksum(data) != chk {
		return nil, errors.Errorf("checksum mismatch: expected 0x%02X got 0x%02X", checksum(data), chk)
	}

	d := &RegisterDump{
		DeviceID: raw[2],
		PatchID:  int(data[0]),
		Name:     string(bytes.TrimRight(data[1:1+patch.NameLen], "\x00")),
	}
	nib := data[1+patch.NameLen:]
	for i := range d.Registers {
		hi, lo := nib[2*i], nib[2*i+1]
		if hi > 0x0F || lo > 0x0F {
			return nil, errors.Errorf("register %d: malformed nibble pair 0x%02X 0x%02X", i, hi, lo)
		}
		d.Registers[i] = hi<<4 | lo
	}
	return d, nil
}
