package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/internal/tracetest"
	"github.com/vango-dev/vrt/pkg/oplog"
)

const (
	keyedScene   = "../../scenes/keyed-reorder.yaml"
	counterScene = "../../scenes/counter.yaml"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&rootOptions{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "-s")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestRenderPrintsHTMLAndOps(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	out, err := run(t, "render", "--config", cfg, keyedScene)
	require.NoError(t, err)
	assert.Contains(t, out, "<ul><li>1</li><li>4</li></ul>\n")
	assert.Contains(t, out, "3 frames")
	assert.Contains(t, out, "create=5")
}

func TestRenderQuiet(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	out, err := run(t, "render", "-q", "--config", cfg, keyedScene)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>1</li><li>4</li></ul>\n", out)
}

func TestRenderExportToDir(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\nrender:\n  format: msgpack\n")
	dir := t.TempDir()

	out, err := run(t, "render", "-q", "--config", cfg, "--export", dir, keyedScene)
	require.NoError(t, err)
	assert.Contains(t, out, "exported "+dir+"/keyed-reorder.html")

	html, err := os.ReadFile(filepath.Join(dir, "keyed-reorder.html"))
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>1</li><li>4</li></ul>", string(html))

	f, err := os.Open(filepath.Join(dir, "keyed-reorder.ops.msgpack"))
	require.NoError(t, err)
	defer f.Close()
	ops, err := oplog.Decode(f, oplog.FormatMsgpack)
	require.NoError(t, err)
	assert.NotEmpty(t, ops)
}

func TestRenderErrors(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	_, err := run(t, "render", "--config", cfg, "--format", "csv", keyedScene)
	assert.Equal(t, "C103", errors.Code(err))

	_, err = run(t, "render", "--config", cfg, "missing.yaml")
	assert.Error(t, err)

	_, err = run(t, "render", "--config", filepath.Join(t.TempDir(), "vrt.yaml"), keyedScene)
	assert.Equal(t, "C100", errors.Code(err))

	_, err = run(t, "render")
	assert.Error(t, err)
}

func TestServeRequiresScene(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	_, err := run(t, "serve", "--config", cfg)
	assert.Equal(t, "I400", errors.Code(err))
}

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRenderComponentScene(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	out, err := run(t, "render", "--config", cfg, counterScene)
	require.NoError(t, err)
	assert.Contains(t, out, `<div><button title="Taps"><b>Taps</b><span class="badge">2</span></button></div>`+"\n")
	assert.Contains(t, out, "3 frames")
	assert.NotContains(t, out, "warning[")
}

func TestRenderMetrics(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")

	out, err := run(t, "render", "-q", "--metrics", "--config", cfg, counterScene)
	require.NoError(t, err)
	assert.Contains(t, out, `vrt_renders_total{component="Counter",phase="mount"} 1`)
	assert.Contains(t, out, `vrt_renders_total{component="Counter",phase="update"} 3`)
	assert.Contains(t, out, `vrt_renders_total{component="Badge",phase="update"} 2`)
	assert.Contains(t, out, "vrt_tracker_notifies_total")
}

func TestRenderTracing(t *testing.T) {
	rec := tracetest.NewRecorder()
	otel.SetTracerProvider(rec)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	cfg := writeConfig(t, "log:\n  level: error\ntracing:\n  enabled: true\n")
	_, err := run(t, "render", "-q", "--config", cfg, counterScene)
	require.NoError(t, err)

	spans := rec.Named("vrt.render")
	require.Len(t, spans, 7)
	assert.Equal(t, "Counter", spans[0].Attr("vrt.component"))
	assert.Equal(t, "mount", spans[0].Attr("vrt.phase"))

	rec.Reset()
	cfg = writeConfig(t, "log:\n  level: error\n")
	_, err = run(t, "render", "-q", "--config", cfg, counterScene)
	require.NoError(t, err)
	assert.Empty(t, rec.Spans(), "tracing is off by default")
}

func TestRenderDiagnostics(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")
	path := writeScene(t, `
components:
  Greeting:
    props: [name]
    render:
      tag: p
      text: "{{greeting}} {{name}}"
frames:
  - component: Greeting
    props: {name: Go}
  - component: Greeting
    props: {name: Gophers}
`)

	out, err := run(t, "render", "--no-color", "--config", cfg, path)
	require.NoError(t, err)
	assert.Contains(t, out, "<p> Gophers</p>")
	assert.Contains(t, out, "warning[R001]: Read of undeclared instance property (2 times)")
	assert.Contains(t, out, "= at Greeting.greeting")
	assert.NotContains(t, out, "\033[")

	out, err = run(t, "render", "-q", "--config", cfg, path)
	require.NoError(t, err)
	assert.NotContains(t, out, "warning[")
}

func TestErrorOutput(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: error\n")
	path := writeScene(t, "name: broken\nframes:\n  - tag: ul\n    text: hello\n    children:\n      - tag: li\n")

	_, err := run(t, "render", "--config", cfg, path)
	require.Error(t, err)

	var b bytes.Buffer
	opts := &rootOptions{noColor: true}
	opts.printer(&b).Error(err)
	assert.Contains(t, b.String(), "error[S201]: Node has both text and children\n")
	assert.Contains(t, b.String(), " --> "+path+":3:5\n")
	assert.Contains(t, b.String(), "3 |   - tag: ul\n")
	assert.NotContains(t, b.String(), "\033[")
}
