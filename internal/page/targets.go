package page

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultTargets are the DemoQA pages, relative to the configured base URL.
var DefaultTargets = map[string]string{
	"text_box":   "/text-box",
	"buttons":    "/buttons",
	"web_tables": "/webtables",
}

// Targets maps page ids to absolute URLs.
type Targets struct {
	urls map[string]string
}

// NewTargets resolves paths against baseURL. Absolute entries are kept as-is.
func NewTargets(baseURL string, paths map[string]string) (*Targets, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}

	t := &Targets{urls: make(map[string]string, len(paths))}

	for id, p := range paths {
		ref, err := url.Parse(strings.TrimLeft(p, "/"))
		if err != nil {
			return nil, fmt.Errorf("parsing url for page %s: %w", id, err)
		}

		if ref.IsAbs() {
			t.urls[id] = ref.String()
			continue
		}

		t.urls[id] = base.ResolveReference(ref).String()
	}

	return t, nil
}

// URL returns the absolute URL for page id.
func (t *Targets) URL(id string) (string, error) {
	u, ok := t.urls[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}

	return u, nil
}

// Has reports whether id is a known page.
func (t *Targets) Has(id string) bool {
	_, ok := t.urls[id]

	return ok
}

// IDs returns the sorted page ids.
func (t *Targets) IDs() []string {
	ids := make([]string, 0, len(t.urls))
	for id := range t.urls {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
