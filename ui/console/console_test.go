package console

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFileW struct {
	*bytes.Buffer
}

func (testFileW) Fd() uintptr { return 0 }

type testFileR struct {
	*bytes.Buffer
}

func (testFileR) Fd() uintptr { return 0 }

func newTestConsole(stdout *bytes.Buffer) *Console {
	return New(
		testFileW{stdout}, testFileW{&bytes.Buffer{}}, testFileR{&bytes.Buffer{}},
		false, "dumb", nil, nil,
	)
}

func TestConsoleBanner(t *testing.T) {
	t.Parallel()

	cons := newTestConsole(&bytes.Buffer{})
	banner := cons.Banner()
	assert.Contains(t, banner, "___")
	// no theme without a TTY
	assert.NotContains(t, banner, "\x1b[")
}

func TestConsoleApplyTheme(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		cons := newTestConsole(&bytes.Buffer{})
		assert.Equal(t, "camoufox", cons.ApplyTheme("camoufox"))
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		cons := &Console{theme: &theme{foreground: newColor(color.FgCyan)}}
		themed := cons.ApplyTheme("camoufox")
		assert.Contains(t, themed, "camoufox")
		assert.Contains(t, themed, "\x1b[")
	})
}

func TestConsolePrint(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	cons := newTestConsole(stdout)
	cons.Print("headless")
	cons.Printf(" proxy=%s", "http://localhost:8080")
	assert.Equal(t, "headless proxy=http://localhost:8080", stdout.String())
}

func TestConsolePrintYAML(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	cons := newTestConsole(stdout)
	require.NoError(t, cons.PrintYAML(map[string]interface{}{
		"headless": true,
		"proxy":    nil,
	}))
	assert.Equal(t, "headless: true\nproxy: null\n", stdout.String())

	err := cons.PrintYAML(func() {})
	require.ErrorContains(t, err, "could not marshal YAML")
}

func TestConsoleTermWidth(t *testing.T) {
	t.Parallel()

	cons := newTestConsole(&bytes.Buffer{})
	width, err := cons.TermWidth()
	require.NoError(t, err)
	assert.Equal(t, defaultTermWidth, width)
}

func TestConsoleWriterSyncs(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	mx := &sync.Mutex{}
	w := newConsoleWriter(testFileW{buf}, mx, "dumb")
	assert.False(t, w.isTTY)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Write([]byte("camoufox\n"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")), 10)
}
