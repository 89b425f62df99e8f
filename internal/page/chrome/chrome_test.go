package chrome

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		keys string
		mods []input.Modifier
	}{
		{in: "Tab", keys: kb.Tab},
		{in: "enter", keys: kb.Enter},
		{in: "Shift+Tab", keys: kb.Tab, mods: []input.Modifier{input.ModifierShift}},
		{in: "Ctrl+Alt+a", keys: "a", mods: []input.Modifier{input.ModifierCtrl, input.ModifierAlt}},
		{in: "x", keys: "x"},
		{in: "+", keys: "+"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			keys, mods := parseKey(tt.in)
			assert.Equal(t, tt.keys, keys)
			assert.Equal(t, tt.mods, mods)
		})
	}
}

func TestWithElement(t *testing.T) {
	js := withElement(`input[name="a"]`, "return el;")

	assert.Equal(t, `(() => { const el = document.querySelector("input[name=\"a\"]"); return el; })()`, js)
}

func TestBrowser_Lifecycle(t *testing.T) {
	b := NewBrowser(logrus.New(), Options{NavigationRate: 2})

	require.NotNil(t, b.limiter)
	assert.InDelta(t, 2.0, float64(b.limiter.Limit()), 0.0001)

	_, err := b.NewPage(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)

	assert.NoError(t, b.Stop())

	assert.Nil(t, NewBrowser(logrus.New(), Options{}).limiter)
}

// TestBrowser_Remote drives a real Chrome when UIMATRIX_CHROME_URL points at
// a DevTools websocket.
func TestBrowser_Remote(t *testing.T) {
	remote := os.Getenv("UIMATRIX_CHROME_URL")
	if remote == "" {
		t.Skip("UIMATRIX_CHROME_URL not set")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)

			return
		}

		fmt.Fprint(w, `<html><head><title>Fixture</title></head><body><div class="container" style="width:300px">
			<input id="name" value=""><button id="go" style="color:rgb(255, 0, 0)" onclick="document.getElementById('out').style.display='block'">Go</button>
			<p id="out" style="display:none">done</p>
			<ul><li class="row">a</li><li class="row"> </li><li class="row"></li></ul></div></body></html>`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	b := NewBrowser(logrus.New(), Options{RemoteURL: remote, Headless: true})
	require.NoError(t, b.Start(ctx))

	defer b.Stop() //nolint:errcheck // test cleanup

	p, err := b.NewPage(ctx)
	require.NoError(t, err)

	defer p.Close()

	require.NoError(t, p.SetViewport(ctx, device.Profile{ID: "mobile_small", Width: 375, Height: 667, Mobile: true}))
	require.NoError(t, p.Navigate(ctx, srv.URL))

	err = p.Navigate(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, page.ErrNavigation)

	require.NoError(t, p.Navigate(ctx, srv.URL))

	visible, err := p.IsVisible(ctx, "#out")
	require.NoError(t, err)
	assert.False(t, visible)

	require.NoError(t, p.Fill(ctx, "#name", "Jane"))
	require.NoError(t, p.Click(ctx, "#go"))

	visible, err = p.IsVisible(ctx, "#out")
	require.NoError(t, err)
	assert.True(t, visible)

	text, found, err := p.Text(ctx, "#out")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "done", text)

	_, found, err = p.Text(ctx, "#nothing")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := p.Count(ctx, "input, button")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = p.CountWithText(ctx, ".row")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	title, err := p.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fixture", title)

	color, found, err := p.ComputedStyle(ctx, "#go", "color")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "rgb(255, 0, 0)", color)

	_, found, err = p.ComputedStyle(ctx, "#nothing", "color")
	require.NoError(t, err)
	assert.False(t, found)

	m, err := p.EvaluateLayoutMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 375, m.ViewportWidth)
	require.NotNil(t, m.ContainerWidth)
	assert.Equal(t, 300, *m.ContainerWidth)

	require.NoError(t, p.Focus(ctx, "#name"))

	id, err := p.ActiveElementID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "name", id)

	data, err := p.Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
