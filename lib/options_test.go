package lib

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func TestOptionsApply(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, Options{}, Options{}.Apply(Options{}))
	})

	t.Run("unset fields are kept", func(t *testing.T) {
		t.Parallel()
		base := Options{
			Headless: null.BoolFrom(false),
			Proxy:    null.StringFrom("socks5://127.0.0.1:9050"),
		}
		assert.Equal(t, base, base.Apply(Options{}))
	})

	t.Run("set fields overwrite", func(t *testing.T) {
		t.Parallel()
		base := Options{Headless: null.BoolFrom(true), Debug: null.BoolFrom(false)}
		opts := base.Apply(Options{Headless: null.BoolFrom(false)})
		assert.Equal(t, null.BoolFrom(false), opts.Headless)
		assert.Equal(t, null.BoolFrom(false), opts.Debug)
	})

	t.Run("tiers stack", func(t *testing.T) {
		t.Parallel()
		env := Options{
			GeoIP: null.BoolFrom(false),
			Proxy: null.StringFrom("http://proxy.internal:3128"),
		}
		payload := Options{
			Proxy:       null.StringFrom("http://localhost:8080"),
			BlockImages: null.BoolFrom(true),
		}
		opts := Options{}.Apply(env).Apply(payload)

		assert.Equal(t, null.BoolFrom(false), opts.GeoIP)
		assert.Equal(t, null.StringFrom("http://localhost:8080"), opts.Proxy)
		assert.Equal(t, null.BoolFrom(true), opts.BlockImages)
		assert.False(t, opts.Headless.Valid)
	})

	t.Run("every field applies", func(t *testing.T) {
		t.Parallel()
		full := Options{
			Headless:      null.BoolFrom(false),
			GeoIP:         null.BoolFrom(false),
			Proxy:         null.StringFrom("http://localhost:8080"),
			Humanize:      null.BoolFrom(false),
			ShowCursor:    null.BoolFrom(false),
			BlockImages:   null.BoolFrom(true),
			MainWorldEval: null.BoolFrom(false),
			Debug:         null.BoolFrom(true),
		}

		// every Options field must be set above, including newly added ones
		fields := reflect.ValueOf(full)
		for i := 0; i < fields.NumField(); i++ {
			valid := fields.Field(i).FieldByName("Valid")
			require.Truef(t, valid.Bool(), "field %s is not set", fields.Type().Field(i).Name)
		}

		assert.Equal(t, full, Options{}.Apply(full))
	})
}

func TestOptionsJSONPayload(t *testing.T) {
	t.Parallel()

	opts := Options{
		Headless:      null.BoolFrom(DefaultHeadless),
		GeoIP:         null.BoolFrom(DefaultGeoIP),
		Humanize:      null.BoolFrom(DefaultHumanize),
		ShowCursor:    null.BoolFrom(DefaultShowCursor),
		BlockImages:   null.BoolFrom(DefaultBlockImages),
		MainWorldEval: null.BoolFrom(DefaultMainWorldEval),
		Debug:         null.BoolFrom(DefaultDebug),
	}

	data, err := json.Marshal(opts)
	require.NoError(t, err)
	// The external key names and the explicit null for an absent proxy are
	// part of the server ABI.
	assert.JSONEq(t, `{
		"headless": true,
		"geoip": true,
		"proxy": null,
		"humanize": true,
		"showcursor": true,
		"blockImages": false,
		"mainWorldEval": true,
		"debug": false
	}`, string(data))

	opts.Proxy = null.StringFrom("http://localhost:8080")
	data, err = json.Marshal(opts)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"proxy":"http://localhost:8080"`)
}
