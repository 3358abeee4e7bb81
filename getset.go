package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"sidpatchmcp/patch"
)

// patchJSON shadows the fixed size oscillator array so a short list only
// overwrites the voices it names.
type patchJSON struct {
	*patch.Settings
	Oscillators []json.RawMessage `json:"oscillators"`
}

// decodeSettings decodes a patch over the init patch. Keys missing from the
// input keep the init patch values, down to the fields of each listed voice.
func decodeSettings(asJson []byte) (patch.Settings, error) {
	s := patch.DefaultSettings()

	in := patchJSON{Settings: &s}
	if err := json.Unmarshal(asJson, &in); err != nil {
		return s, fmt.Errorf("failed to unmarshal patch JSON: %w", err)
	}
	if len(in.Oscillators) > patch.NumOscillators {
		return s, fmt.Errorf("patch lists %d oscillators, at most %d allowed", len(in.Oscillators), patch.NumOscillators)
	}
	for i, raw := range in.Oscillators {
		if err := json.Unmarshal(raw, &s.Oscillators[i]); err != nil {
			return s, fmt.Errorf("failed to unmarshal oscillator %d: %w", i, err)
		}
	}

	if err := validateSettings(&s); err != nil {
		return s, fmt.Errorf("invalid patch: %w", err)
	}
	return s, nil
}

// readSettings decodes a patch from r.
func readSettings(r io.Reader) (patch.Settings, error) {
	asJson, err := io.ReadAll(r)
	if err != nil {
		return patch.DefaultSettings(), fmt.Errorf("failed to read patch JSON: %w", err)
	}
	return decodeSettings(asJson)
}

func listParams(w io.Writer) {
	for _, p := range patch.Params() {
		regs := []string{"-"}
		if p.Routed() {
			regs = regs[:0]
			for _, r := range p.Offsets() {
				regs = append(regs, fmt.Sprintf("0x%02X", r))
			}
		}
		fmt.Fprintf(w, "%2d  %-8s %-14s %5d..%-5d %s\n",
			p.Index, p.Name, p.Kind, p.Enc.Min, p.Enc.Max, strings.Join(regs, ","))
	}
}

// compilePatch reads a patch from r and writes its register image to w.
func compilePatch(r io.Reader, w io.Writer) error {
	s, err := readSettings(r)
	if err != nil {
		return err
	}

	regs := patch.Compile(&s)
	log.Printf("Compiled patch %d %q", s.ID, s.Name)

	_, err = fmt.Fprintln(w, regs.String())
	return err
}

// dumpPatch reads a patch from r and writes its SysEx register dump to w.
func dumpPatch(r io.Reader, w io.Writer, cfg *Config) error {
	s, err := readSettings(r)
	if err != nil {
		return err
	}

	live := patch.NewLivePatch()
	live.Load(&s)

	msg, err := EncodeDump(byte(cfg.DeviceID), live.ID(), live.Name(), live.Registers())
	if err != nil {
		return fmt.Errorf("failed to build register dump: %w", err)
	}
	if cfg.Debug {
		dumpBytes(msg.Bytes(), "register dump")
	}

	_, err = fmt.Fprintf(w, "% X\n", msg.Bytes())
	return err
}

// decodePatch reads a hex register dump from r and writes its header and
// register image to w.
func decodePatch(r io.Reader, w io.Writer) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read register dump: %w", err)
	}

	msg, err := ParseDump(string(text))
	if err != nil {
		return err
	}
	d, err := DecodeDump(msg)
	if err != nil {
		return fmt.Errorf("failed to decode register dump: %w", err)
	}
	log.Printf("Decoded patch %d %q from device %d", d.PatchID, d.Name, d.DeviceID)

	_, err = fmt.Fprintf(w, "device %d patch %d %q\n%s\n", d.DeviceID, d.PatchID, d.Name, d.Registers)
	return err
}
