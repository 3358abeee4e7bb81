package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"sidpatchmcp/patch"
)

// session is the editor side of one live patch. The core does no locking, so
// every access to the live patch goes through mu; readers never see an image
// halfway through an update.
type session struct {
	mu   sync.Mutex
	live *patch.LivePatch
}

func newSession(initial patch.Settings) (*session, error) {
	if err := validateSettings(&initial); err != nil {
		return nil, err
	}
	live := patch.NewLivePatch()
	live.Load(&initial)
	return &session{live: live}, nil
}

// validateSettings enforces the ranges the compiler assumes.
func validateSettings(s *patch.Settings) error {
	if len(s.Name) > patch.NameLen {
		return fmt.Errorf("patch name %q longer than %d characters", s.Name, patch.NameLen)
	}
	for i := 0; i < len(s.Name); i++ {
		if s.Name[i] > 0x7F {
			return fmt.Errorf("patch name %q is not 7-bit ASCII", s.Name)
		}
	}
	if s.ID < 0 || s.ID > 0x7F {
		return fmt.Errorf("patch id must be in range 0-127, got %d", s.ID)
	}
	for _, p := range patch.Params() {
		if v := s.Get(p.Index); !p.InRange(v) {
			return fmt.Errorf("%s must be in range %d-%d, got %d", p.Name, p.Enc.Min, p.Enc.Max, v)
		}
	}
	return nil
}

// resolveParam accepts a parameter short name ("ATK B") or its index, as a
// number or a decimal string.
func resolveParam(arg any) (patch.Param, error) {
	if arg == nil {
		return patch.Param{}, fmt.Errorf("parameter is required")
	}
	var index int
	if name, ok := arg.(string); ok {
		if p, ok := patch.ParamByName(name); ok {
			return p, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil {
			return patch.Param{}, fmt.Errorf("unknown parameter %q", name)
		}
		index = n
	} else {
		n, err := cast.ToIntE(arg)
		if err != nil {
			return patch.Param{}, fmt.Errorf("unknown parameter %v", arg)
		}
		index = n
	}
	p, ok := patch.Lookup(index)
	if !ok {
		return patch.Param{}, fmt.Errorf("parameter index must be in range 0-%d, got %d", patch.NumParams-1, index)
	}
	return p, nil
}

func (s *session) load(src patch.Settings) (patch.Registers, error) {
	if err := validateSettings(&src); err != nil {
		return patch.Registers{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.live.Load(&src)
	return s.live.Registers(), nil
}

// set applies one edit and returns the resulting image.
func (s *session) set(p patch.Param, v int) (patch.Registers, error) {
	if !p.InRange(v) {
		return patch.Registers{}, fmt.Errorf("%s must be in range %d-%d, got %d", p.Name, p.Enc.Min, p.Enc.Max, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.live.Set(p.Index, v)
	return s.live.Registers(), nil
}

func (s *session) snapshot() (patch.Settings, patch.Registers) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.live.Settings(), s.live.Registers()
}
