package patch

import (
	"fmt"
	"strings"
)

// RegisterCount is the size of the SID register bank written by the
// transport ($D400-$D418).
const RegisterCount = 25

// Register offsets relative to the chip base.
const (
	RegV1FreqLo = 0x00 // Voice 1 frequency, owned by the note collaborator
	RegV1FreqHi = 0x01
	RegV1PwLo   = 0x02 // Voice 1 pulse width low byte
	RegV1PwHi   = 0x03 // Voice 1 pulse width high nibble (bits 0-3 only)
	RegV1Ctrl   = 0x04 // Voice 1 control register
	RegV1AD     = 0x05 // Voice 1 attack/decay
	RegV1SR     = 0x06 // Voice 1 sustain/release

	voiceStride = 7

	RegFcLo    = 0x15 // Filter cutoff low (bits 0-2 only)
	RegFcHi    = 0x16 // Filter cutoff high byte
	RegResFilt = 0x17 // Filter resonance (bits 4-7) and routing (bits 0-3)
	RegModeVol = 0x18 // Volume (bits 0-3), filter mode (bits 4-7)
)

// Voice control register bits
const (
	CtrlGate     = 0x01 // Bit 0: Gate, owned by the note collaborator
	CtrlSync     = 0x02 // Bit 1: Sync with previous voice
	CtrlRingMod  = 0x04 // Bit 2: Ring modulation with previous voice
	CtrlTest     = 0x08 // Bit 3: Test bit (not used)
	CtrlTriangle = 0x10 // Bit 4: Triangle waveform
	CtrlSawtooth = 0x20 // Bit 5: Sawtooth waveform
	CtrlPulse    = 0x40 // Bit 6: Pulse/square waveform
	CtrlNoise    = 0x80 // Bit 7: Noise waveform
)

// Filter resonance/routing register bits
const (
	FiltV1  = 0x01 // Bit 0: Route voice 1 through filter
	FiltV2  = 0x02 // Bit 1: Route voice 2 through filter
	FiltV3  = 0x04 // Bit 2: Route voice 3 through filter
	FiltExt = 0x08 // Bit 3: Route external input through filter (never set)
	FiltRes = 0xF0 // Bits 4-7: Filter resonance (0-15)
)

// Mode/volume register bits
const (
	ModeVolMask = 0x0F // Bits 0-3: Master volume (not written)
	ModeLP      = 0x10 // Bit 4: Low-pass filter
	ModeBP      = 0x20 // Bit 5: Band-pass filter
	ModeHP      = 0x40 // Bit 6: High-pass filter
	Mode3Off    = 0x80 // Bit 7: Voice 3 off (not used)
)

// Waveform selector -> control bit. Exactly one bit per selector; combined
// waveforms are not representable.
var waveformBits = [...]byte{CtrlTriangle, CtrlSawtooth, CtrlPulse, CtrlRingMod, CtrlSync, CtrlNoise}

// Filter mode selector -> MODE/VOL high nibble. Notch is low-pass plus
// high-pass. Band-pass and high-pass follow the 6581 bit order, not the
// swapped 0x40/0x20 hex values of the older patch tables.
var filterModeBits = [...]byte{ModeLP, ModeBP, ModeHP, ModeLP | ModeHP}

type voiceRegs struct {
	pwLo, pwHi, ctrl, ad, sr int
}

var voiceRegisters = func() [NumOscillators]voiceRegs {
	var v [NumOscillators]voiceRegs
	for osc := range v {
		// Frequency registers lead each voice block; the note collaborator owns them.
		base := osc * voiceStride
		v[osc] = voiceRegs{
			pwLo: base + RegV1PwLo,
			pwHi: base + RegV1PwHi,
			ctrl: base + RegV1Ctrl,
			ad:   base + RegV1AD,
			sr:   base + RegV1SR,
		}
	}
	return v
}()

// Registers is the compiled register image, indexed by register offset.
type Registers [RegisterCount]byte

// String renders the image as space separated hex bytes.
func (r Registers) String() string {
	var sb strings.Builder
	for i, b := range r {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Bytes returns a copy of the image suitable for writing to the chip in
// offset order.
func (r Registers) Bytes() []byte {
	out := make([]byte, RegisterCount)
	copy(out, r[:])
	return out
}

// packer computes the full byte of one register from the settings. Every
// register shared by several parameters has exactly one packer, so the byte
// never depends on which parameter triggered the write.
type packer func(s *Settings) byte

var packers = buildPackers()

func buildPackers() [RegisterCount]packer {
	var t [RegisterCount]packer

	for osc := 0; osc < NumOscillators; osc++ {
		v := voiceRegisters[osc]
		t[v.pwLo] = func(s *Settings) byte {
			return byte(pulseWidth12.Mask(s.Oscillators[osc].PulseWidth) & 0xFF)
		}
		t[v.pwHi] = func(s *Settings) byte {
			return byte(pulseWidth12.Mask(s.Oscillators[osc].PulseWidth) >> 8)
		}
		t[v.ctrl] = func(s *Settings) byte {
			return waveformBit(s.Oscillators[osc].Waveform)
		}
		t[v.ad] = func(s *Settings) byte {
			o := &s.Oscillators[osc]
			return nibbles(o.Attack, o.Decay)
		}
		t[v.sr] = func(s *Settings) byte {
			o := &s.Oscillators[osc]
			return nibbles(o.Sustain, o.Release)
		}
	}

	t[RegFcLo] = func(s *Settings) byte {
		lo, _ := splitCutoff(s.Cutoff)
		return lo
	}
	t[RegFcHi] = func(s *Settings) byte {
		_, hi := splitCutoff(s.Cutoff)
		return hi
	}
	t[RegResFilt] = func(s *Settings) byte {
		b := byte(nibble.Mask(s.Resonance)) << 4
		for osc := range s.Oscillators {
			if bit1.Mask(s.Oscillators[osc].FilterEnable) != 0 {
				b |= FiltV1 << osc
			}
		}
		return b
	}
	t[RegModeVol] = func(s *Settings) byte {
		return filterModeBit(s.Mode)
	}

	return t
}

func nibbles(hi, lo int) byte {
	return byte(nibble.Mask(hi)<<4 | nibble.Mask(lo))
}

// splitCutoff divides the cutoff into its low and high register bytes. The
// high register always holds the top 8 bits, so the split point follows the
// declared cutoff width.
func splitCutoff(v int) (lo, hi byte) {
	lowBits := cutoff11.Bits - 8
	v = cutoff11.Mask(v)
	return byte(v & (1<<lowBits - 1)), byte(v >> lowBits)
}

func waveformBit(sel int) byte {
	if sel < 0 || sel >= len(waveformBits) {
		panic(fmt.Sprintf("patch: waveform selector %d out of range", sel))
	}
	return waveformBits[sel]
}

func filterModeBit(sel int) byte {
	if sel < 0 || sel >= len(filterModeBits) {
		panic(fmt.Sprintf("patch: filter mode %d out of range", sel))
	}
	return filterModeBits[sel]
}
