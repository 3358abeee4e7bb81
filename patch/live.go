package patch

// LivePatch is a patch together with its compiled register image. After Load,
// the image always equals Compile of the embedded settings.
//
// A LivePatch is not safe for concurrent use. Hosts that read the image from
// another goroutine must serialize access around Load, Set and UpdateOne.
type LivePatch struct {
	settings Settings
	regs     Registers
}

// NewLivePatch returns an empty live patch with a zeroed register image.
func NewLivePatch() *LivePatch {
	return &LivePatch{}
}

// Load copies src into the live patch and rebuilds the whole image. It always
// reports success.
func (l *LivePatch) Load(src *Settings) bool {
	Copy(src, &l.settings)
	l.regs = Compile(&l.settings)
	return true
}

// Get returns the value of the parameter at index.
func (l *LivePatch) Get(index int) int {
	return l.settings.Get(index)
}

// Set changes one parameter and refreshes only the registers it owns.
func (l *LivePatch) Set(index int, v int) {
	l.settings.Set(index, v)
	l.UpdateOne(index)
}

// UpdateOne recompiles the registers owned by the parameter at index and
// leaves every other register untouched.
func (l *LivePatch) UpdateOne(index int) {
	p := mustParam(index)
	writeParam(&l.regs, &l.settings, &p)
}

// Settings returns a copy of the embedded settings.
func (l *LivePatch) Settings() Settings {
	return l.settings
}

// Registers returns a copy of the register image.
func (l *LivePatch) Registers() Registers {
	return l.regs
}

// ID returns the patch id.
func (l *LivePatch) ID() int {
	return l.settings.ID
}

// Name returns the patch name.
func (l *LivePatch) Name() string {
	return l.settings.Name
}
