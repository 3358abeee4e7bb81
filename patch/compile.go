package patch

// Compile builds the register image for s from scratch. Parameters are
// visited in index order and each one writes every register it owns.
// Registers no parameter owns (oscillator frequency) are left at zero.
func Compile(s *Settings) Registers {
	var regs Registers
	for i := range params {
		writeParam(&regs, s, &params[i])
	}
	return regs
}

// writeParam refreshes the registers owned by p. Unrouted parameters write
// nothing.
func writeParam(regs *Registers, s *Settings, p *Param) {
	if p.Lo != Unavailable {
		regs[p.Lo] = packers[p.Lo](s)
	}
	if p.Hi != Unavailable {
		regs[p.Hi] = packers[p.Hi](s)
	}
}
