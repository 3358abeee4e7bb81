// Package patch compiles SID voice patches into register images.
package patch

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	NumOscillators = 3
	NumParams      = 28 // 8 per oscillator + cutoff, resonance, mode, volume
	ParamNameLen   = 8  // Max length of param names.
	Unavailable    = -1 // Register offset sentinel for parameters with no register.
)

// Kind identifies which settings field a parameter controls.
type Kind int

const (
	KindWaveform Kind = iota
	KindAttack
	KindDecay
	KindSustain
	KindRelease
	KindPulseWidth
	KindDetune
	KindFilterEnable
	KindCutoff
	KindResonance
	KindFilterMode
	KindVolume
)

var kindNames = [...]string{
	"waveform", "attack", "decay", "sustain", "release", "pulse_width",
	"detune", "filter_enable", "cutoff", "resonance", "filter_mode", "volume",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Encoding describes the legal range of a parameter and the width of the
// register field it lands in. Bits is 0 for values that never reach a register.
type Encoding struct {
	Bits   int
	Min    int
	Max    int
	Labels []string
}

var (
	bit1          = Encoding{Bits: 1, Max: 1}
	nibble        = Encoding{Bits: 4, Max: 15}
	cutoff11      = Encoding{Bits: 11, Max: 2047}
	pulseWidth12  = Encoding{Bits: 12, Max: 4095}
	detuneTenths  = Encoding{Min: -240, Max: 240} // two octaves either way in 10 cent steps
	waveformSel   = Encoding{Bits: 3, Max: 5, Labels: []string{"TRI", "SAW", "SQUARE", "RING", "SYNC", "NOISE"}}
	filterModeSel = Encoding{Bits: 2, Max: 3, Labels: []string{"LOWPASS", "BANDPASS", "HIGHPASS", "NOTCH"}}
)

// Mask truncates v to the encoding's register width.
func (e Encoding) Mask(v int) int {
	if e.Bits == 0 {
		return v
	}
	return v & (1<<e.Bits - 1)
}

// Param is the static descriptor of one editable patch field.
type Param struct {
	Index int
	Name  string
	Kind  Kind
	Osc   int // -1 for voice-wide parameters
	Enc   Encoding
	Lo    int
	Hi    int
}

// Limit returns the largest legal value.
func (p Param) Limit() int {
	return p.Enc.Max
}

// InRange reports whether v is a legal value for p.
func (p Param) InRange(v int) bool {
	return v >= p.Enc.Min && v <= p.Enc.Max
}

// Label renders v the way a patch editor would show it.
func (p Param) Label(v int) string {
	if p.Enc.Labels != nil && v >= 0 && v < len(p.Enc.Labels) {
		return p.Enc.Labels[v]
	}
	return strconv.Itoa(v)
}

// Routed reports whether the parameter reaches the register image.
func (p Param) Routed() bool {
	return p.Lo != Unavailable
}

// Owns reports whether reg is one of the parameter's target registers.
func (p Param) Owns(reg int) bool {
	return reg != Unavailable && (reg == p.Lo || reg == p.Hi)
}

// Offsets returns the target registers in low, high order.
func (p Param) Offsets() []int {
	switch {
	case p.Lo == Unavailable:
		return nil
	case p.Hi == Unavailable:
		return []int{p.Lo}
	}
	return []int{p.Lo, p.Hi}
}

// clone detaches the label list so callers cannot edit the shared table.
func (p Param) clone() Param {
	p.Enc.Labels = slices.Clone(p.Enc.Labels)
	return p
}

func (p Param) String() string {
	return fmt.Sprintf("%d:%s", p.Index, p.Name)
}

// Per-oscillator parameter layout. Each oscillator owns paramsPerOsc
// consecutive indices starting at osc*paramsPerOsc.
const (
	paramsPerOsc = 8

	ParamCutoff    = NumOscillators * paramsPerOsc
	ParamResonance = ParamCutoff + 1
	ParamMode      = ParamCutoff + 2
	ParamVolume    = ParamCutoff + 3
)

// OscParam returns the index of the parameter of kind k for oscillator osc.
func OscParam(osc int, k Kind) int {
	if osc < 0 || osc >= NumOscillators || k < KindWaveform || k > KindFilterEnable {
		panic(fmt.Sprintf("patch: no oscillator parameter %v for oscillator %d", k, osc))
	}
	return osc*paramsPerOsc + int(k)
}

var params = buildParams()

func buildParams() [NumParams]Param {
	var t [NumParams]Param

	oscEnc := [paramsPerOsc]Encoding{waveformSel, nibble, nibble, nibble, nibble, pulseWidth12, detuneTenths, bit1}
	oscName := [paramsPerOsc]string{"WAVE", "ATK", "DEC", "SUS", "REL", "PW", "DTN", "FLT"}

	for osc := 0; osc < NumOscillators; osc++ {
		v := voiceRegisters[osc]
		regs := [paramsPerOsc][2]int{
			{v.ctrl, Unavailable},
			{v.ad, Unavailable},
			{v.ad, Unavailable},
			{v.sr, Unavailable},
			{v.sr, Unavailable},
			{v.pwLo, v.pwHi},
			{Unavailable, Unavailable},
			{RegResFilt, Unavailable},
		}
		for k := 0; k < paramsPerOsc; k++ {
			i := osc*paramsPerOsc + k
			t[i] = Param{
				Index: i,
				Name:  oscName[k] + " " + string(rune('A'+osc)),
				Kind:  Kind(k),
				Osc:   osc,
				Enc:   oscEnc[k],
				Lo:    regs[k][0],
				Hi:    regs[k][1],
			}
		}
	}

	t[ParamCutoff] = Param{Index: ParamCutoff, Name: "CUTOFF", Kind: KindCutoff, Osc: -1, Enc: cutoff11, Lo: RegFcLo, Hi: RegFcHi}
	t[ParamResonance] = Param{Index: ParamResonance, Name: "RESO", Kind: KindResonance, Osc: -1, Enc: nibble, Lo: RegResFilt, Hi: Unavailable}
	t[ParamMode] = Param{Index: ParamMode, Name: "MODE", Kind: KindFilterMode, Osc: -1, Enc: filterModeSel, Lo: RegModeVol, Hi: Unavailable}
	// Volume has no register: MODE/VOL only carries the filter mode bits.
	t[ParamVolume] = Param{Index: ParamVolume, Name: "VOLUME", Kind: KindVolume, Osc: -1, Enc: nibble, Lo: Unavailable, Hi: Unavailable}

	return t
}

// Lookup returns the descriptor for index.
func Lookup(index int) (Param, bool) {
	if index < 0 || index >= NumParams {
		return Param{}, false
	}
	return params[index].clone(), true
}

// RegisterOffsets returns the register(s) written for index. Unrouted
// parameters report Unavailable for both offsets; ok is false only when index
// is outside the table.
func RegisterOffsets(index int) (lo, hi int, ok bool) {
	p, ok := Lookup(index)
	if !ok {
		return Unavailable, Unavailable, false
	}
	return p.Lo, p.Hi, true
}

// Params returns a copy of the parameter table in index order.
func Params() []Param {
	out := make([]Param, NumParams)
	for i, p := range params {
		out[i] = p.clone()
	}
	return out
}

// ParamByName finds a parameter by its short name, ignoring case.
func ParamByName(name string) (Param, bool) {
	name = strings.TrimSpace(name)
	for _, p := range params {
		if strings.EqualFold(p.Name, name) {
			return p.clone(), true
		}
	}
	return Param{}, false
}

func mustParam(index int) Param {
	p, ok := Lookup(index)
	if !ok {
		panic(fmt.Sprintf("patch: parameter index %d out of range", index))
	}
	return p
}
