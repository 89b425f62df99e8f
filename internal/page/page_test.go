package page

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargets_ResolveAgainstBase(t *testing.T) {
	t.Parallel()

	targets, err := NewTargets("https://demoqa.com/", map[string]string{
		"text_box": "/text-box",
		"buttons":  "buttons",
		"external": "https://example.com/form",
	})
	require.NoError(t, err)

	u, err := targets.URL("text_box")
	require.NoError(t, err)
	assert.Equal(t, "https://demoqa.com/text-box", u)

	u, err = targets.URL("buttons")
	require.NoError(t, err)
	assert.Equal(t, "https://demoqa.com/buttons", u)

	u, err = targets.URL("external")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/form", u)

	_, err = targets.URL("missing")
	assert.ErrorIs(t, err, ErrUnknownTarget)

	assert.Equal(t, []string{"buttons", "external", "text_box"}, targets.IDs())
}

func TestTargets_BasePathPreserved(t *testing.T) {
	t.Parallel()

	targets, err := NewTargets("http://localhost:8080/demo", DefaultTargets)
	require.NoError(t, err)

	u, err := targets.URL("web_tables")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/demo/webtables", u)
}

func TestErrors_MatchSentinels(t *testing.T) {
	t.Parallel()

	nav := &NavigationError{URL: "https://demoqa.com", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, nav, ErrNavigation)
	assert.ErrorIs(t, nav, context.DeadlineExceeded)
	assert.Contains(t, nav.Error(), "demoqa.com")

	status := &NavigationError{URL: "https://demoqa.com", Status: 502}
	assert.Contains(t, status.Error(), "status 502")

	wrapped := &ActionError{Action: "click", Selector: "#submit", Err: errors.New("detached")}
	assert.ErrorIs(t, wrapped, ErrAction)
	assert.NotErrorIs(t, wrapped, ErrNavigation)
	assert.Equal(t, "action click on #submit: detached", wrapped.Error())

	assert.ErrorIs(t, CheckViewport(0, 10), ErrViewport)
	assert.NoError(t, CheckViewport(375, 667))
}
