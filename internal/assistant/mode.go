package assistant

import "claudehub/pkg/config"

// Mode says whether a reply came from the hosted model or was synthesized
// locally.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeFallback Mode = "fallback"
)

// ResolveMode maps a credential to the mode it allows.
func ResolveMode(credential string) Mode {
	if config.IsUnset(credential) {
		return ModeFallback
	}
	return ModeLive
}
