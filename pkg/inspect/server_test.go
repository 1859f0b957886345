package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/pkg/dom/memdom"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/oplog"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scene"
)

const demo = `
name: demo
frames:
  - tag: div
    text: text
  - tag: div
    children:
      - {tag: p, text: text1}
      - {tag: p, text: text2}
`

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := scene.Load(strings.NewReader(demo))
	require.NoError(t, err)

	m := metrics.NewCollector()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	player := scene.NewPlayer(s, memdom.NewDocument(), renderer.WithMetrics(m), renderer.WithLogger(logger))
	srv := New(player, WithMetrics(m), WithLogger(logger))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.close()
	})
	return srv, ts
}

func post(t *testing.T, url string) (*http.Response, frameResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var fr frameResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&fr))
	}
	return resp, fr
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	_, ts := newServer(t)
	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestFrames(t *testing.T) {
	_, ts := newServer(t)

	resp, fr := post(t, ts.URL+"/frames/next")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, fr.Frame)
	assert.False(t, fr.Done)
	assert.Equal(t, "<div>text</div>", fr.HTML)
	assert.NotEmpty(t, fr.Ops)

	resp, fr = post(t, ts.URL+"/frames/next")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, fr.Frame)
	assert.True(t, fr.Done)
	assert.Equal(t, 2, oplog.Count(fr.Ops)[oplog.KindCreate])

	_, tree := get(t, ts.URL+"/tree")
	assert.Equal(t, "<div><p>text1</p><p>text2</p></div>", string(tree))

	resp, _ = post(t, ts.URL+"/frames/next")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, fr = post(t, ts.URL+"/frames/reset")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, -1, fr.Frame)
	assert.Equal(t, "", fr.HTML)
}

func TestPanickingFrameReleasesPlayer(t *testing.T) {
	srv, ts := newServer(t)
	cancel := srv.player.Document().OnOp(func(oplog.Op) {
		panic("mutation listener failed")
	})

	resp, _ := post(t, ts.URL+"/frames/next")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	tree, err := client.Get(ts.URL + "/tree")
	require.NoError(t, err, "player lock was not released after the panic")
	tree.Body.Close()
	assert.Equal(t, http.StatusOK, tree.StatusCode)

	ops, err := client.Get(ts.URL + "/ops")
	require.NoError(t, err)
	ops.Body.Close()
	assert.Equal(t, http.StatusOK, ops.StatusCode)
}

func TestOps(t *testing.T) {
	_, ts := newServer(t)
	post(t, ts.URL+"/frames/next")

	resp, body := get(t, ts.URL+"/ops?format=json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	ops, err := oplog.Decode(bytes.NewReader(body), oplog.FormatJSON)
	require.NoError(t, err)
	// Container <div>, then the frame's <div>.
	assert.Equal(t, 2, oplog.Count(ops)[oplog.KindCreate])

	resp, body = get(t, ts.URL+"/ops")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "create")

	resp, body = get(t, ts.URL+"/ops?format=xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"I402"`)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newServer(t)
	post(t, ts.URL+"/frames/next")

	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vrt_mounts_total{kind="element"} 1`)
}

func TestWebSocketStream(t *testing.T) {
	srv, ts := newServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	hello := read()
	assert.Equal(t, MessageHello, hello.Type)
	assert.Equal(t, -1, hello.Frame)
	assert.Equal(t, 1, srv.Subscribers())

	_, fr := post(t, ts.URL+"/frames/next")

	for range fr.Ops {
		msg := read()
		require.Equal(t, MessageOp, msg.Type)
		require.NotNil(t, msg.Op)
	}
	done := read()
	assert.Equal(t, MessageFrame, done.Type)
	assert.Equal(t, 0, done.Frame)
}

func TestServeShutdown(t *testing.T) {
	s, err := scene.Load(strings.NewReader(demo))
	require.NoError(t, err)
	srv := New(scene.NewPlayer(s, memdom.NewDocument()), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenError(t *testing.T) {
	s, err := scene.Load(strings.NewReader(demo))
	require.NoError(t, err)
	srv := New(scene.NewPlayer(s, memdom.NewDocument()), WithAddr("256.0.0.1:bad"))

	err = srv.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I400")
}
