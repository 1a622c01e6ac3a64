package hoedown

import "errors"

// Sentinel errors returned by the package-level configuration and
// rendering entry points. Parse-time recoverable failures (dropped
// references, nesting overflow, ill-formed constructs) never surface
// as errors — see RenderWithDiagnostics.
var (
	// ErrRendererRequired is returned by Markdown and its variants
	// when called with a nil *Renderer.
	ErrRendererRequired = errors.New("hoedown: renderer is required")

	// ErrInvalidExtensionName is returned by ParseExtensionNames when
	// a name does not match any known Extensions flag.
	ErrInvalidExtensionName = errors.New("hoedown: invalid extension name")

	// ErrConfigNotFound is returned by LoadConfig when the requested
	// file does not exist.
	ErrConfigNotFound = errors.New("hoedown: config file not found")
)
