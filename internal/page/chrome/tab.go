package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
)

// containerSelector locates the main content container used for layout metrics.
const containerSelector = ".container, .main-header, .text-center"

type tab struct {
	ctx     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// bind derives a tab context that honours ctx's deadline and cancellation.
func (t *tab) bind(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(t.ctx)

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc

		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		prev := cancel
		cancel = func() { cancelDeadline(); prev() }
	}

	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() { stop(); cancel() }
}

// run executes actions on the tab, reporting the caller's context error when
// that is what ended them.
func (t *tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, release := t.bind(ctx)
	defer release()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return err
	}

	return nil
}

func (t *tab) SetViewport(ctx context.Context, p device.Profile) error {
	if err := page.CheckViewport(p.Width, p.Height); err != nil {
		return err
	}

	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}

	opts := []chromedp.EmulateViewportOption{chromedp.EmulateScale(scale)}
	if p.Mobile {
		opts = append(opts, chromedp.EmulateMobile)
	}

	if err := t.run(ctx, chromedp.EmulateViewport(int64(p.Width), int64(p.Height), opts...)); err != nil {
		return &page.ViewportError{Width: p.Width, Height: p.Height, Err: err}
	}

	return nil
}

func (t *tab) Navigate(ctx context.Context, url string) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return &page.NavigationError{URL: url, Err: err}
		}
	}

	runCtx, release := t.bind(ctx)
	defer release()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return &page.NavigationError{URL: url, Err: err}
	}

	if resp != nil && (resp.Status < 200 || resp.Status >= 400) {
		return &page.NavigationError{URL: url, Status: int(resp.Status)}
	}

	if err := chromedp.Run(runCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return &page.NavigationError{URL: url, Err: err}
	}

	t.log.WithField("url", url).Debug("navigated")

	return nil
}

// eval evaluates a JS expression into out.
func (t *tab) eval(ctx context.Context, expr string, out interface{}) error {
	return t.run(ctx, chromedp.Evaluate(expr, out))
}

func (t *tab) IsVisible(ctx context.Context, selector string) (bool, error) {
	var visible bool

	err := t.eval(ctx, withElement(selector, `
		if (!el) return false;
		const s = window.getComputedStyle(el);
		const r = el.getBoundingClientRect();
		return s.visibility !== 'hidden' && s.display !== 'none' && (r.width > 0 || r.height > 0);`), &visible)

	return visible, err
}

func (t *tab) BoundingBox(ctx context.Context, selector string) (page.Box, bool, error) {
	var box *page.Box

	err := t.eval(ctx, withElement(selector, `
		if (!el) return null;
		const r = el.getBoundingClientRect();
		if (r.width === 0 && r.height === 0) return null;
		return {x: r.x, y: r.y, width: r.width, height: r.height};`), &box)
	if err != nil || box == nil {
		return page.Box{}, false, err
	}

	return *box, true, nil
}

func (t *tab) EvaluateLayoutMetrics(ctx context.Context) (page.LayoutMetrics, error) {
	var m page.LayoutMetrics

	err := t.eval(ctx, fmt.Sprintf(`(() => {
		const container = document.querySelector(%s);
		const doc = document.documentElement;
		return {
			bodyWidth: document.body.offsetWidth,
			containerWidth: container ? container.offsetWidth : null,
			scrollWidth: doc.scrollWidth,
			hasHorizontalScroll: doc.scrollWidth > window.innerWidth,
			viewportWidth: window.innerWidth,
			viewportHeight: window.innerHeight
		};
	})()`, quote(containerSelector)), &m)

	return m, err
}

func (t *tab) Title(ctx context.Context) (string, error) {
	var title string

	err := t.eval(ctx, `document.title`, &title)

	return title, err
}

func (t *tab) Text(ctx context.Context, selector string) (string, bool, error) {
	var text *string

	err := t.eval(ctx, withElement(selector, `return el ? el.textContent : null;`), &text)
	if err != nil || text == nil {
		return "", false, err
	}

	return *text, true, nil
}

func (t *tab) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value *string

	err := t.eval(ctx, withElement(selector, fmt.Sprintf(`return el ? el.getAttribute(%s) : null;`, quote(name))), &value)
	if err != nil || value == nil {
		return "", false, err
	}

	return *value, true, nil
}

func (t *tab) Count(ctx context.Context, selector string) (int, error) {
	var n int

	err := t.eval(ctx, fmt.Sprintf(`document.querySelectorAll(%s).length`, quote(selector)), &n)

	return n, err
}

func (t *tab) ComputedStyle(ctx context.Context, selector, property string) (string, bool, error) {
	var value *string

	body := fmt.Sprintf(`return el ? window.getComputedStyle(el).getPropertyValue(%s) : null;`, quote(property))

	err := t.eval(ctx, withElement(selector, body), &value)
	if err != nil || value == nil {
		return "", false, err
	}

	return *value, true, nil
}

// CountWithText skips the empty filler rows some table widgets pad their bodies with.
func (t *tab) CountWithText(ctx context.Context, selector string) (int, error) {
	var n int

	err := t.eval(ctx, fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).filter((el) => el.textContent.trim() !== "").length`,
		quote(selector)), &n)

	return n, err
}

func (t *tab) ActiveElementID(ctx context.Context) (string, error) {
	var id string

	err := t.eval(ctx, `document.activeElement ? document.activeElement.id : ""`, &id)

	return id, err
}

func (t *tab) Fill(ctx context.Context, selector, value string) error {
	return t.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (t *tab) Click(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (t *tab) DoubleClick(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.DoubleClick(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (t *tab) RightClick(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.QueryAfter(selector,
		func(ctx context.Context, _ runtime.ExecutionContextID, nodes ...*cdp.Node) error {
			if len(nodes) == 0 {
				return fmt.Errorf("no element matches %s", selector) //nolint:err113 // Selector-specific message
			}

			return chromedp.MouseClickNode(nodes[0], chromedp.ButtonType(input.Right)).Do(ctx)
		},
		chromedp.ByQuery, chromedp.NodeVisible,
	))
}

func (t *tab) Focus(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.Focus(selector, chromedp.ByQuery))
}

func (t *tab) Press(ctx context.Context, key string) error {
	keys, modifiers := parseKey(key)

	var opts []chromedp.KeyOption
	if len(modifiers) > 0 {
		opts = append(opts, chromedp.KeyModifiers(modifiers...))
	}

	return t.run(ctx, chromedp.KeyEvent(keys, opts...))
}

func (t *tab) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte

	if err := t.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}

	return buf, nil
}

func (t *tab) Close() error {
	t.cancel()

	return nil
}

var namedKeys = map[string]string{
	"tab":        kb.Tab,
	"enter":      kb.Enter,
	"escape":     kb.Escape,
	"backspace":  kb.Backspace,
	"delete":     kb.Delete,
	"space":      " ",
	"arrowup":    kb.ArrowUp,
	"arrowdown":  kb.ArrowDown,
	"arrowleft":  kb.ArrowLeft,
	"arrowright": kb.ArrowRight,
	"home":       kb.Home,
	"end":        kb.End,
	"pageup":     kb.PageUp,
	"pagedown":   kb.PageDown,
}

var modifierKeys = map[string]input.Modifier{
	"shift":   input.ModifierShift,
	"control": input.ModifierCtrl,
	"ctrl":    input.ModifierCtrl,
	"alt":     input.ModifierAlt,
	"meta":    input.ModifierMeta,
}

// parseKey splits "Shift+Tab" style key names into the key sequence and modifiers.
// Unknown names are typed literally.
func parseKey(key string) (string, []input.Modifier) {
	parts := strings.Split(key, "+")
	if key == "+" {
		parts = []string{"+"}
	}

	var mods []input.Modifier

	for _, part := range parts[:len(parts)-1] {
		if m, ok := modifierKeys[strings.ToLower(part)]; ok {
			mods = append(mods, m)
		}
	}

	last := parts[len(parts)-1]
	if named, ok := namedKeys[strings.ToLower(last)]; ok {
		return named, mods
	}

	return last, mods
}

// withElement wraps body in a function with el bound to the first match of selector.
func withElement(selector, body string) string {
	return fmt.Sprintf(`(() => { const el = document.querySelector(%s); %s })()`, quote(selector), body)
}

func quote(s string) string {
	b, _ := json.Marshal(s)

	return string(b)
}

var _ page.Page = (*tab)(nil)
