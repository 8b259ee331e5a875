package host

// NoopWindow is the headless default Window: every call is a no-op,
// matching §6.3's "no-op if no window is bound." Real embedders (a
// native GUI shell, or the wsdebug reference adapter under
// pkg/host/window/wsdebug) supply their own.
type NoopWindow struct{}

func (NoopWindow) SetTitle(string)   {}
func (NoopWindow) SetResizable(bool) {}
