// Package page defines the capability contract a browser-driven target page must
// satisfy. Selectors are arguments, never stored state, so a Page can be reused
// across scenarios.
package page

import (
	"context"

	"github.com/ethpandaops/uimatrix/internal/device"
)

// Box is an element's bounding box in CSS pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutMetrics describes the current document layout.
type LayoutMetrics struct {
	BodyWidth           int  `json:"bodyWidth"`
	ContainerWidth      *int `json:"containerWidth"`
	ScrollWidth         int  `json:"scrollWidth"`
	HasHorizontalScroll bool `json:"hasHorizontalScroll"`
	ViewportWidth       int  `json:"viewportWidth"`
	ViewportHeight      int  `json:"viewportHeight"`
}

// Page is the set of capabilities a scenario may use. A Page is owned by one lane
// at a time; implementations need not be safe for concurrent use.
//
// Queries against selectors that match nothing return a neutral result (false,
// found=false, zero) and a nil error. Errors are reserved for driver failures.
type Page interface {
	SetViewport(ctx context.Context, profile device.Profile) error
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)

	IsVisible(ctx context.Context, selector string) (bool, error)
	BoundingBox(ctx context.Context, selector string) (Box, bool, error)
	EvaluateLayoutMetrics(ctx context.Context) (LayoutMetrics, error)
	Text(ctx context.Context, selector string) (string, bool, error)
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	// ComputedStyle returns the resolved value of a CSS property, e.g. "background-color".
	ComputedStyle(ctx context.Context, selector, property string) (string, bool, error)
	Count(ctx context.Context, selector string) (int, error)
	// CountWithText counts matches whose trimmed text content is not empty.
	CountWithText(ctx context.Context, selector string) (int, error)
	ActiveElementID(ctx context.Context) (string, error)

	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	DoubleClick(ctx context.Context, selector string) error
	RightClick(ctx context.Context, selector string) error
	Focus(ctx context.Context, selector string) error
	Press(ctx context.Context, key string) error

	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Factory opens pages. The driver opens one page per lane.
type Factory interface {
	NewPage(ctx context.Context) (Page, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context) (Page, error)

// NewPage calls f(ctx).
func (f FactoryFunc) NewPage(ctx context.Context) (Page, error) {
	return f(ctx)
}
