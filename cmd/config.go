package cmd

import (
	"encoding/json"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"github.com/camoufox/camoufox-server/lib"
)

// Config wraps the launch options. Everything in here is forwarded to the
// automation server as its launch configuration.
type Config struct {
	lib.Options
}

// Apply overlays any set fields of cfg on top of c and returns the result.
func (c Config) Apply(cfg Config) Config {
	c.Options = c.Options.Apply(cfg.Options)
	return c
}

// sanitizeConfigArg normalizes a raw --config value: surrounding whitespace
// is dropped and one layer of matching single or double quotes is stripped,
// so payloads that reach us still shell-quoted behave the same as unquoted
// ones.
func sanitizeConfigArg(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			s = s[1 : len(s)-1]
		}
	}

	return s
}

// getPayloadConfig parses the --config JSON payload. The payload can never
// abort the launch: a malformed payload is reported and dropped as a whole,
// a mistyped option is reported and skipped on its own, and whatever remains
// usable is kept.
func getPayloadConfig(logger logrus.FieldLogger, raw string) Config {
	payload := sanitizeConfigArg(raw)
	if payload == "" {
		return Config{}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		logger.WithError(err).WithField("config", raw).
			Error("Error parsing the JSON configuration, falling back to defaults")
		return Config{}
	}
	if fields == nil { // the payload was a JSON null
		logger.WithField("config", raw).
			Error("The JSON configuration is not an object, falling back to defaults")
		return Config{}
	}

	return Config{Options: getOptions(logger, fields)}
}

// readEnvConfig reads the configuration variables from the environment.
func readEnvConfig(envVars map[string]string) (Config, error) {
	conf := Config{}
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := envVars[key]
		return v, ok
	})
	return conf, err
}

// applyDefault fills every field that is still unset after consolidation.
// Proxy is deliberately left out: an absent proxy is forwarded as null.
func applyDefault(conf Config) Config {
	if !conf.Headless.Valid {
		conf.Headless = null.BoolFrom(lib.DefaultHeadless)
	}
	if !conf.GeoIP.Valid {
		conf.GeoIP = null.BoolFrom(lib.DefaultGeoIP)
	}
	if !conf.Humanize.Valid {
		conf.Humanize = null.BoolFrom(lib.DefaultHumanize)
	}
	if !conf.ShowCursor.Valid {
		conf.ShowCursor = null.BoolFrom(lib.DefaultShowCursor)
	}
	if !conf.BlockImages.Valid {
		conf.BlockImages = null.BoolFrom(lib.DefaultBlockImages)
	}
	if !conf.MainWorldEval.Valid {
		conf.MainWorldEval = null.BoolFrom(lib.DefaultMainWorldEval)
	}
	if !conf.Debug.Valid {
		conf.Debug = null.BoolFrom(lib.DefaultDebug)
	}

	return conf
}

// getConsolidatedConfig assembles the final launch configuration from all of
// the different sources, lowest priority first:
//   - the documented defaults;
//   - CAMOUFOX_* environment variables;
//   - the --config JSON payload.
//
// It never fails: tiers that cannot be read are reported and skipped, so the
// worst possible input still launches the server with the defaults.
func getConsolidatedConfig(gs *globalState) Config {
	conf, err := readEnvConfig(gs.envVars)
	if err != nil {
		conf = Config{}
		gs.logger.WithError(err).
			Warn("Could not read the environment configuration, skipping it")
	}

	conf = conf.Apply(getPayloadConfig(gs.logger, gs.flags.configPayload))

	return applyDefault(conf)
}
