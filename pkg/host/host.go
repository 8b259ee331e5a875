// Package host declares the narrow interfaces the evaluator drives
// for logging, window control, and key-state queries (spec §6.3),
// grounded on original_source/src/systems/{logger,window,inputs}.rs.
// The Rust originals are concrete structs; here they become
// interfaces so a concrete backend (zap-backed file logger, the
// wsdebug reference window, a headless no-op) stays pluggable per
// spec §1's host-adapter boundary.
package host

// Logger is the file-backed per-app log surface (§6.1, §6.2). The two
// System* methods are the runtime's own diagnostic lines (APC_SUC /
// APC_ERR, used for "entrypoint missing" and similar operational
// notices); the rest are the builtin surface's LogInfo family, whose
// string arguments have already been auto_convert'd to String by the
// evaluator before reaching here (§6.2: "All string arguments to
// loggers are coerced via auto_convert(..., String) first").
type Logger interface {
	CreateFileFor(appName string) error
	SystemLognSuccess(message string)
	SystemLognError(message string)

	LogInfo(params []string)
	LognInfo(params []string)
	LogSuccess(params []string)
	LognSuccess(params []string)
	LogWarning(params []string)
	LognWarning(params []string)
	LogError(params []string)
	LognError(params []string)
}

// Window is the title/resizability surface a loaded app's SetTitle
// and SetResizable builtins drive (§6.2, §6.3). A no-op implementation
// is valid: "no-op if no window is bound."
type Window interface {
	SetTitle(title string)
	SetResizable(resizable bool)
}

// KeyState is one of a physical key's three ingest states (§6.3).
type KeyState uint8

const (
	KeyReleased KeyState = iota
	KeyJustPressed
	KeyPressed
)

// Inputs maintains scancode → KeyState and answers the three
// IsKey* builtin queries (§6.2, §6.3).
type Inputs interface {
	HandleKeyEvent(scancode uint32, pressed bool)
	IsKeyReleased(scancode uint32) bool
	IsKeyJustPressed(scancode uint32) bool
	IsKeyPressed(scancode uint32) bool
}
