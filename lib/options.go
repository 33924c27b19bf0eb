package lib

import (
	"gopkg.in/guregu/null.v3"
)

// Default values for every launch option. An option left unset by all
// configuration tiers is filled from this table before the server is started.
const (
	DefaultHeadless      = true
	DefaultGeoIP         = true
	DefaultHumanize      = true
	DefaultShowCursor    = true
	DefaultBlockImages   = false
	DefaultMainWorldEval = true
	DefaultDebug         = false
)

type Options struct {
	// Run the browser without a visible window?
	Headless null.Bool `json:"headless" envconfig:"CAMOUFOX_HEADLESS"`

	// Keep the reported geolocation, timezone and locale consistent with the
	// egress IP address?
	GeoIP null.Bool `json:"geoip" envconfig:"CAMOUFOX_GEOIP"`

	// Proxy endpoint to route browser traffic through. Absent means a direct
	// connection; the value is handed to the server as-is.
	Proxy null.String `json:"proxy" envconfig:"CAMOUFOX_PROXY"`

	// Enable human-like timing for page interactions?
	Humanize null.Bool `json:"humanize" envconfig:"CAMOUFOX_HUMANIZE"`

	// Render a visible cursor overlay while the server drives the page?
	ShowCursor null.Bool `json:"showcursor" envconfig:"CAMOUFOX_SHOWCURSOR"`

	// Skip loading image resources?
	BlockImages null.Bool `json:"blockImages" envconfig:"CAMOUFOX_BLOCK_IMAGES"`

	// Allow script evaluation in the page's main execution context. Needed by
	// clients that rely on main-world DOM access.
	MainWorldEval null.Bool `json:"mainWorldEval" envconfig:"CAMOUFOX_MAIN_WORLD_EVAL"`

	// Run the launched server with verbose diagnostics?
	Debug null.Bool `json:"debug" envconfig:"CAMOUFOX_DEBUG"`
}

// Apply returns a new Options struct where all fields that were set (i.e.
// valid) in opts overwrite the receiver's values. Unset fields keep the
// receiver's values, which is what lets configuration tiers stack.
func (o Options) Apply(opts Options) Options {
	if opts.Headless.Valid {
		o.Headless = opts.Headless
	}
	if opts.GeoIP.Valid {
		o.GeoIP = opts.GeoIP
	}
	if opts.Proxy.Valid {
		o.Proxy = opts.Proxy
	}
	if opts.Humanize.Valid {
		o.Humanize = opts.Humanize
	}
	if opts.ShowCursor.Valid {
		o.ShowCursor = opts.ShowCursor
	}
	if opts.BlockImages.Valid {
		o.BlockImages = opts.BlockImages
	}
	if opts.MainWorldEval.Valid {
		o.MainWorldEval = opts.MainWorldEval
	}
	if opts.Debug.Valid {
		o.Debug = opts.Debug
	}
	return o
}
