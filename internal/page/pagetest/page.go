// Package pagetest provides a scriptable in-memory page.Page for tests.
package pagetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
)

// ErrClosed is returned by every capability after Close.
var ErrClosed = errors.New("page closed")

// Element is a fake DOM element addressed by its selector.
type Element struct {
	Visible bool
	Box     page.Box
	Text    string
	Attrs   map[string]string
	// Styles holds computed CSS values keyed by property name.
	Styles map[string]string
}

// Page is a fake page. Configure the exported fields before handing it to a
// driver; the methods are safe for concurrent use.
type Page struct {
	// PageTitle is the document title.
	PageTitle string
	// Elements are addressed by exact selector string.
	Elements map[string]*Element
	// Counts overrides Count for a selector; otherwise Count is 1 if the element exists.
	Counts map[string]int
	// TextCounts overrides CountWithText; otherwise it is 1 if the element has non-blank text.
	TextCounts map[string]int
	// TabOrder lists element ids focused in order by Press("Tab").
	TabOrder []string

	// Layout computes layout metrics for the current viewport. Nil yields a
	// layout that exactly fits the viewport.
	Layout func(vp device.Profile) page.LayoutMetrics

	// NavigateErrs are returned by successive Navigate calls; nil entries succeed.
	NavigateErrs []error
	// ActionErrs fails the named capability ("set_viewport", "fill", "click", ...) every time.
	ActionErrs map[string]error
	// OnClick mutates the page when a selector is clicked (any click kind).
	OnClick map[string]func(p *Page)
	// OnNavigate is called with every navigated URL, before NavigateErrs apply.
	OnNavigate func(url string)

	ScreenshotData []byte
	ScreenshotErr  error

	mu        sync.Mutex
	baseline  map[string]*Element
	viewport  device.Profile
	url       string
	values    map[string]string
	focused   string
	navCalls  int
	calls     []string
	closed    bool
	screenies int
}

// New returns an empty fake page with a desktop viewport.
func New() *Page {
	return &Page{
		Elements:       make(map[string]*Element),
		Counts:         make(map[string]int),
		TextCounts:     make(map[string]int),
		ActionErrs:     make(map[string]error),
		OnClick:        make(map[string]func(p *Page)),
		ScreenshotData: []byte("\x89PNG fake"),
		viewport:       device.Profile{ID: "desktop", Width: 1920, Height: 1080},
		values:         make(map[string]string),
	}
}

// Set registers or replaces an element.
func (p *Page) Set(selector string, el *Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Elements[selector] = el

	return p
}

// Show makes selector visible, creating it if needed. Intended for OnClick hooks,
// which run with the page lock held.
func (p *Page) Show(selector, text string) {
	el, ok := p.Elements[selector]
	if !ok {
		el = &Element{}
		p.Elements[selector] = el
	}

	el.Visible = true
	el.Text = text
}

// Value returns the last value filled into selector.
func (p *Page) Value(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.values[selector]
}

// Calls returns the capability call log, e.g. "navigate https://...".
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.calls...)
}

// NavigateCalls returns how many times Navigate was invoked.
func (p *Page) NavigateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.navCalls
}

// Screenshots returns how many screenshots were taken.
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.screenies
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}

// Viewport returns the viewport last applied.
func (p *Page) Viewport() device.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.viewport
}

func (p *Page) record(format string, args ...interface{}) error {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	if p.closed {
		return ErrClosed
	}

	return nil
}

func (p *Page) SetViewport(_ context.Context, profile device.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("viewport %dx%d", profile.Width, profile.Height); err != nil {
		return err
	}

	if err := p.ActionErrs["set_viewport"]; err != nil {
		return err
	}

	if err := page.CheckViewport(profile.Width, profile.Height); err != nil {
		return err
	}

	p.viewport = profile

	return nil
}

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(url)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("navigate %s", url); err != nil {
		return err
	}

	idx := p.navCalls
	p.navCalls++

	if idx < len(p.NavigateErrs) && p.NavigateErrs[idx] != nil {
		return p.NavigateErrs[idx]
	}

	// Every load starts from the DOM as it was before the first navigation.
	if p.baseline == nil {
		p.baseline = cloneElements(p.Elements)
	} else {
		p.Elements = cloneElements(p.baseline)
	}

	p.url = url
	p.values = make(map[string]string)
	p.focused = ""

	return nil
}

func (p *Page) Title(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("title"); err != nil {
		return "", err
	}

	return p.PageTitle, nil
}

func (p *Page) IsVisible(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("is_visible %s", selector); err != nil {
		return false, err
	}

	el, ok := p.Elements[selector]

	return ok && el.Visible, nil
}

func (p *Page) BoundingBox(_ context.Context, selector string) (page.Box, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("bounding_box %s", selector); err != nil {
		return page.Box{}, false, err
	}

	el, ok := p.Elements[selector]
	if !ok || !el.Visible {
		return page.Box{}, false, nil
	}

	return el.Box, true, nil
}

func (p *Page) EvaluateLayoutMetrics(_ context.Context) (page.LayoutMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("layout"); err != nil {
		return page.LayoutMetrics{}, err
	}

	if p.Layout != nil {
		return p.Layout(p.viewport), nil
	}

	return FitLayout(p.viewport, p.viewport.Width), nil
}

func (p *Page) Text(_ context.Context, selector string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("text %s", selector); err != nil {
		return "", false, err
	}

	el, ok := p.Elements[selector]
	if !ok {
		return "", false, nil
	}

	return el.Text, true, nil
}

func (p *Page) Attribute(_ context.Context, selector, name string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("attribute %s %s", selector, name); err != nil {
		return "", false, err
	}

	el, ok := p.Elements[selector]
	if !ok || el.Attrs == nil {
		return "", false, nil
	}

	v, ok := el.Attrs[name]

	return v, ok, nil
}

func (p *Page) Count(_ context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("count %s", selector); err != nil {
		return 0, err
	}

	if n, ok := p.Counts[selector]; ok {
		return n, nil
	}

	if _, ok := p.Elements[selector]; ok {
		return 1, nil
	}

	return 0, nil
}

func (p *Page) ComputedStyle(_ context.Context, selector, property string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("computed_style %s %s", selector, property); err != nil {
		return "", false, err
	}

	el, ok := p.Elements[selector]
	if !ok {
		return "", false, nil
	}

	// Unset properties resolve to an empty string, as in a browser.
	return el.Styles[property], true, nil
}

func (p *Page) CountWithText(_ context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("count_with_text %s", selector); err != nil {
		return 0, err
	}

	if n, ok := p.TextCounts[selector]; ok {
		return n, nil
	}

	if el, ok := p.Elements[selector]; ok && strings.TrimSpace(el.Text) != "" {
		return 1, nil
	}

	return 0, nil
}

func (p *Page) ActiveElementID(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("active_element"); err != nil {
		return "", err
	}

	return p.focused, nil
}

func (p *Page) Fill(_ context.Context, selector, value string) error {
	return p.act("fill", selector, func() {
		p.values[selector] = value
	})
}

func (p *Page) Click(_ context.Context, selector string) error {
	return p.act("click", selector, p.clickHook(selector))
}

func (p *Page) DoubleClick(_ context.Context, selector string) error {
	return p.act("double_click", selector, p.clickHook(selector))
}

func (p *Page) RightClick(_ context.Context, selector string) error {
	return p.act("right_click", selector, p.clickHook(selector))
}

func (p *Page) Focus(_ context.Context, selector string) error {
	return p.act("focus", selector, func() {
		if len(selector) > 1 && selector[0] == '#' {
			p.focused = selector[1:]
		}
	})
}

func (p *Page) Press(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("press %s", key); err != nil {
		return err
	}

	if err := p.ActionErrs["press"]; err != nil {
		return err
	}

	if key != "Tab" || len(p.TabOrder) == 0 {
		return nil
	}

	next := 0
	for i, id := range p.TabOrder {
		if id == p.focused {
			next = (i + 1) % len(p.TabOrder)
			break
		}
	}

	p.focused = p.TabOrder[next]

	return nil
}

func (p *Page) Screenshot(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("screenshot"); err != nil {
		return nil, err
	}

	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}

	p.screenies++

	return append([]byte(nil), p.ScreenshotData...), nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}

// act records an element action and fails it when the element is missing or an
// error is scripted. Real browsers time out on missing elements; the fake fails fast.
func (p *Page) act(name, selector string, apply func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.record("%s %s", name, selector); err != nil {
		return err
	}

	if err := p.ActionErrs[name]; err != nil {
		return err
	}

	if _, ok := p.Elements[selector]; !ok {
		return fmt.Errorf("no element matches %s", selector)
	}

	apply()

	return nil
}

func (p *Page) clickHook(selector string) func() {
	return func() {
		if hook, ok := p.OnClick[selector]; ok {
			hook(p)
		}
	}
}

func cloneElements(in map[string]*Element) map[string]*Element {
	out := make(map[string]*Element, len(in))
	for sel, el := range in {
		cp := *el
		if el.Attrs != nil {
			cp.Attrs = make(map[string]string, len(el.Attrs))
			for k, v := range el.Attrs {
				cp.Attrs[k] = v
			}
		}

		if el.Styles != nil {
			cp.Styles = make(map[string]string, len(el.Styles))
			for k, v := range el.Styles {
				cp.Styles[k] = v
			}
		}

		out[sel] = &cp
	}

	return out
}

// FitLayout returns metrics for a document whose content is contentWidth wide.
func FitLayout(vp device.Profile, contentWidth int) page.LayoutMetrics {
	scroll := contentWidth
	if scroll < vp.Width {
		scroll = vp.Width
	}

	return page.LayoutMetrics{
		BodyWidth:           vp.Width,
		ScrollWidth:         scroll,
		HasHorizontalScroll: scroll > vp.Width,
		ViewportWidth:       vp.Width,
		ViewportHeight:      vp.Height,
	}
}

// MinWidthLayout simulates a site that overflows viewports narrower than minWidth.
func MinWidthLayout(minWidth int) func(vp device.Profile) page.LayoutMetrics {
	return func(vp device.Profile) page.LayoutMetrics {
		return FitLayout(vp, minWidth)
	}
}

// Factory hands out fake pages built by Build and remembers them.
type Factory struct {
	Build func() *Page
	Err   error

	mu    sync.Mutex
	pages []*Page
}

// NewPage implements page.Factory.
func (f *Factory) NewPage(_ context.Context) (page.Page, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	build := f.Build
	if build == nil {
		build = New
	}

	p := build()

	f.mu.Lock()
	f.pages = append(f.pages, p)
	f.mu.Unlock()

	return p, nil
}

// Pages returns every page handed out so far.
func (f *Factory) Pages() []*Page {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*Page(nil), f.pages...)
}

var (
	_ page.Page    = (*Page)(nil)
	_ page.Factory = (*Factory)(nil)
)
