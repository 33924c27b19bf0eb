package cmd

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/camoufox/camoufox-server/lib"
)

// getOptions decodes the individual launch options from an already parsed
// JSON object. The options are decoded one by one, so a single mistyped
// value only loses that option and leaves its siblings intact. Keys that
// don't name a launch option are skipped silently.
func getOptions(logger logrus.FieldLogger, fields map[string]json.RawMessage) lib.Options {
	opts := lib.Options{}

	known := []struct {
		key    string
		target interface{}
	}{
		{"headless", &opts.Headless},
		{"geoip", &opts.GeoIP},
		{"proxy", &opts.Proxy},
		{"humanize", &opts.Humanize},
		{"showcursor", &opts.ShowCursor},
		{"blockImages", &opts.BlockImages},
		{"mainWorldEval", &opts.MainWorldEval},
		{"debug", &opts.Debug},
	}

	for _, opt := range known {
		raw, ok := fields[opt.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, opt.target); err != nil {
			logger.WithError(err).WithField("option", opt.key).
				Warn("Skipping a launch option with an invalid value")
		}
	}

	return opts
}
