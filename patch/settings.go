package patch

const NameLen = 8 // Max length of patch names.

// Oscillator holds the per-voice fields of a patch.
type Oscillator struct {
	Waveform     int `json:"waveform"`      // 0 - 5
	Attack       int `json:"attack"`        // nibble
	Decay        int `json:"decay"`         // nibble
	Sustain      int `json:"sustain"`       // nibble
	Release      int `json:"release"`       // nibble
	PulseWidth   int `json:"pulse_width"`   // 12-bit
	Detune       int `json:"detune"`        // tenths of a semitone, +/-240
	FilterEnable int `json:"filter_enable"` // 1-bit
}

// Settings is the editable form of a patch. Values are expected to be in
// range; the compiler masks numeric fields to their register width and
// panics on unmapped selectors.
type Settings struct {
	Oscillators [NumOscillators]Oscillator `json:"oscillators"`

	// Filter
	Cutoff    int `json:"cutoff"`    // 11-bit
	Resonance int `json:"resonance"` // nibble
	Mode      int `json:"mode"`      // 0 - 3

	// General
	Volume int `json:"volume"` // nibble, not routed to a register

	// System
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DefaultSettings returns the init patch: triangle on all voices, square
// duty pulse width, every voice through an open low-pass filter.
func DefaultSettings() Settings {
	s := Settings{
		Cutoff: 1024,
		Mode:   0,
		Volume: 15,
		Name:   "INIT",
	}
	for i := range s.Oscillators {
		s.Oscillators[i] = Oscillator{
			Waveform:     0,
			Sustain:      15,
			PulseWidth:   2048,
			FilterEnable: 1,
		}
	}
	return s
}

// field is the accessor pair for one parameter index.
type field struct {
	get func(s *Settings) int
	set func(s *Settings, v int)
}

var fields = buildFields()

func buildFields() [NumParams]field {
	var t [NumParams]field

	oscFields := [paramsPerOsc]func(o *Oscillator) *int{
		func(o *Oscillator) *int { return &o.Waveform },
		func(o *Oscillator) *int { return &o.Attack },
		func(o *Oscillator) *int { return &o.Decay },
		func(o *Oscillator) *int { return &o.Sustain },
		func(o *Oscillator) *int { return &o.Release },
		func(o *Oscillator) *int { return &o.PulseWidth },
		func(o *Oscillator) *int { return &o.Detune },
		func(o *Oscillator) *int { return &o.FilterEnable },
	}
	for osc := 0; osc < NumOscillators; osc++ {
		for k, ref := range oscFields {
			t[osc*paramsPerOsc+k] = field{
				get: func(s *Settings) int { return *ref(&s.Oscillators[osc]) },
				set: func(s *Settings, v int) { *ref(&s.Oscillators[osc]) = v },
			}
		}
	}

	t[ParamCutoff] = field{
		get: func(s *Settings) int { return s.Cutoff },
		set: func(s *Settings, v int) { s.Cutoff = v },
	}
	t[ParamResonance] = field{
		get: func(s *Settings) int { return s.Resonance },
		set: func(s *Settings, v int) { s.Resonance = v },
	}
	t[ParamMode] = field{
		get: func(s *Settings) int { return s.Mode },
		set: func(s *Settings, v int) { s.Mode = v },
	}
	t[ParamVolume] = field{
		get: func(s *Settings) int { return s.Volume },
		set: func(s *Settings, v int) { s.Volume = v },
	}

	return t
}

func fieldFor(index int) field {
	mustParam(index)
	return fields[index]
}

// Get returns the value of the parameter at index.
func (s *Settings) Get(index int) int {
	return fieldFor(index).get(s)
}

// Set stores v in the parameter at index. It does not touch any register
// image.
func (s *Settings) Set(index int, v int) {
	fieldFor(index).set(s, v)
}

// Copy copies every field of src, identity included, into dst. It always
// reports success.
func Copy(src, dst *Settings) bool {
	*dst = *src
	return true
}
