package patch

import (
	"testing"
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// sampleValues returns a spread of legal values for p, every value for
// labelled encodings.
func sampleValues(p Param) []int {
	if p.Enc.Labels != nil {
		out := make([]int, 0, len(p.Enc.Labels))
		for v := range p.Enc.Labels {
			out = append(out, v)
		}
		return out
	}
	mid := (p.Enc.Min + p.Enc.Max) / 2
	return []int{p.Enc.Min, p.Enc.Max, mid, p.Enc.Min + 1, p.Enc.Max - 1}
}

func TestCompile_PackingCases(t *testing.T) {
	s := DefaultSettings()
	s.Oscillators[0].Attack = 5
	s.Oscillators[0].Decay = 3
	s.Oscillators[1].Waveform = 2
	s.Cutoff = 2047
	s.Mode = 3

	regs := Compile(&s)

	if regs[RegV1AD] != 0x53 {
		t.Errorf("expected V1_AD=0x53, got 0x%02X", regs[RegV1AD])
	}
	if got := regs[voiceRegisters[1].ctrl]; got != 0x40 {
		t.Errorf("expected V2_CTRL=0x40, got 0x%02X", got)
	}
	if regs[RegFcLo] != 0x07 {
		t.Errorf("expected FC_LO=0x07, got 0x%02X", regs[RegFcLo])
	}
	if regs[RegFcHi] != 0xFF {
		t.Errorf("expected FC_HI=0xFF, got 0x%02X", regs[RegFcHi])
	}
	if regs[RegModeVol] != 0x50 {
		t.Errorf("expected MODE_VOL=0x50, got 0x%02X", regs[RegModeVol])
	}
}

func TestCompile_DefaultImage(t *testing.T) {
	s := DefaultSettings()
	regs := Compile(&s)

	want := Registers{
		0x00, 0x00, 0x00, 0x08, 0x10, 0x00, 0xF0,
		0x00, 0x00, 0x00, 0x08, 0x10, 0x00, 0xF0,
		0x00, 0x00, 0x00, 0x08, 0x10, 0x00, 0xF0,
		0x00, 0x80, 0x07, 0x10,
	}
	if regs != want {
		t.Errorf("default image mismatch:\n got  %v\n want %v", regs, want)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	s := DefaultSettings()
	s.Oscillators[2].Waveform = 5
	s.Oscillators[2].PulseWidth = 0xABC
	s.Resonance = 9
	s.Cutoff = 777

	first := Compile(&s)
	second := Compile(&s)
	if first != second {
		t.Errorf("compile not idempotent:\n %v\n %v", first, second)
	}
}

func TestCompile_WaveformOneHot(t *testing.T) {
	want := []byte{CtrlTriangle, CtrlSawtooth, CtrlPulse, CtrlRingMod, CtrlSync, CtrlNoise}
	for sel, bit := range want {
		s := DefaultSettings()
		s.Oscillators[0].Waveform = sel
		got := Compile(&s)[RegV1Ctrl]
		if got != bit {
			t.Errorf("waveform %d: expected 0x%02X, got 0x%02X", sel, bit, got)
		}
		if got&(got-1) != 0 {
			t.Errorf("waveform %d: control byte 0x%02X has more than one bit", sel, got)
		}
	}
}

func TestCompile_FilterModes(t *testing.T) {
	want := []byte{0x10, 0x20, 0x40, 0x50}
	for mode, b := range want {
		s := DefaultSettings()
		s.Mode = mode
		if got := Compile(&s)[RegModeVol]; got != b {
			t.Errorf("mode %d: expected 0x%02X, got 0x%02X", mode, b, got)
		}
	}
}

func TestCompile_VolumeNotWritten(t *testing.T) {
	s := DefaultSettings()
	before := Compile(&s)
	for v := 0; v <= 15; v++ {
		s.Volume = v
		if got := Compile(&s); got != before {
			t.Fatalf("volume %d changed the image: %v", v, got)
		}
	}
	if before[RegModeVol]&ModeVolMask != 0 {
		t.Errorf("expected empty volume nibble, got 0x%02X", before[RegModeVol])
	}
}

func TestCompile_FilterRouting(t *testing.T) {
	s := DefaultSettings()
	if got := Compile(&s)[RegResFilt]; got != FiltV1|FiltV2|FiltV3 {
		t.Errorf("expected all voices routed (0x07), got 0x%02X", got)
	}

	s.Oscillators[1].FilterEnable = 0
	s.Resonance = 0xA
	if got := Compile(&s)[RegResFilt]; got != 0xA5 {
		t.Errorf("expected RES_FILT=0xA5, got 0x%02X", got)
	}
}

func TestCompile_PulseWidth(t *testing.T) {
	s := DefaultSettings()
	s.Oscillators[1].PulseWidth = 0xABC
	regs := Compile(&s)
	v := voiceRegisters[1]
	if regs[v.pwLo] != 0xBC || regs[v.pwHi] != 0x0A {
		t.Errorf("expected PW=0xBC/0x0A, got 0x%02X/0x%02X", regs[v.pwLo], regs[v.pwHi])
	}
}

func TestCompile_Masking(t *testing.T) {
	s := DefaultSettings()
	s.Oscillators[0].Attack = 20 // 0x14 -> 0x4
	s.Oscillators[0].Decay = 3
	s.Oscillators[0].PulseWidth = 0x1234
	s.Oscillators[2].FilterEnable = 2 // low bit clear
	s.Resonance = 20
	s.Cutoff = 2048 + 5

	regs := Compile(&s)

	if regs[RegV1AD] != 0x43 {
		t.Errorf("expected masked V1_AD=0x43, got 0x%02X", regs[RegV1AD])
	}
	if regs[RegV1PwLo] != 0x34 || regs[RegV1PwHi] != 0x02 {
		t.Errorf("expected masked PW=0x34/0x02, got 0x%02X/0x%02X", regs[RegV1PwLo], regs[RegV1PwHi])
	}
	if regs[RegResFilt] != 0x43 {
		t.Errorf("expected masked RES_FILT=0x43, got 0x%02X", regs[RegResFilt])
	}
	if regs[RegFcLo] != 0x05 || regs[RegFcHi] != 0x00 {
		t.Errorf("expected masked FC=0x05/0x00, got 0x%02X/0x%02X", regs[RegFcLo], regs[RegFcHi])
	}

	// Reloading the same out-of-range values is reproducible.
	if again := Compile(&s); again != regs {
		t.Errorf("masked compile not reproducible")
	}
}

func TestCompile_UnmappedSelectorsPanic(t *testing.T) {
	mustPanic(t, "waveform 6", func() {
		s := DefaultSettings()
		s.Oscillators[0].Waveform = 6
		Compile(&s)
	})
	mustPanic(t, "waveform -1", func() {
		s := DefaultSettings()
		s.Oscillators[2].Waveform = -1
		Compile(&s)
	})
	mustPanic(t, "mode 4", func() {
		s := DefaultSettings()
		s.Mode = 4
		Compile(&s)
	})
}

func TestCopy_CompilesIdentically(t *testing.T) {
	src := DefaultSettings()
	src.ID = 42
	src.Name = "ABCDEFGH"
	src.Oscillators[0].Waveform = 1
	src.Oscillators[1].Release = 7
	src.Oscillators[2].Detune = -120
	src.Cutoff = 300
	src.Mode = 2

	var dst Settings
	if !Copy(&src, &dst) {
		t.Fatal("Copy reported failure")
	}
	if dst != src {
		t.Errorf("copy mismatch:\n got  %+v\n want %+v", dst, src)
	}
	if dst.Name != "ABCDEFGH" || len(dst.Name) != NameLen {
		t.Errorf("expected full 8 character name, got %q", dst.Name)
	}
	if dst.ID != 42 {
		t.Errorf("expected id 42, got %d", dst.ID)
	}
	if Compile(&dst) != Compile(&src) {
		t.Errorf("copied settings compile differently")
	}

	// No aliasing between source and copy.
	dst.Oscillators[0].Waveform = 4
	if src.Oscillators[0].Waveform != 1 {
		t.Errorf("copy aliases source oscillators")
	}
}
