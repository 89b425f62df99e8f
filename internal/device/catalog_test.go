package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_RegisterAndResolve(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Register(Profile{ID: "mobile_small", Width: 375, Height: 667}))

	p, err := c.Resolve("mobile_small")
	require.NoError(t, err)
	assert.Equal(t, 375, p.Width)
	assert.Equal(t, 667, p.Height)
	assert.Equal(t, 1.0, p.Scale)
}

func TestCatalog_ResolveUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog().Resolve("watch")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDevice)

	var unknown *UnknownDeviceError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "watch", unknown.ID)
}

func TestCatalog_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Register(Profile{ID: "laptop", Width: 1366, Height: 768}))

	err := c.Register(Profile{ID: "laptop", Width: 1440, Height: 900})
	assert.ErrorIs(t, err, ErrDuplicateDevice)

	p, err := c.Resolve("laptop")
	require.NoError(t, err)
	assert.Equal(t, 1366, p.Width, "first registration wins")
}

func TestCatalog_RegisterInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
	}{
		{name: "empty id", profile: Profile{Width: 1, Height: 1}},
		{name: "zero width", profile: Profile{ID: "a", Height: 1}},
		{name: "negative height", profile: Profile{ID: "a", Width: 1, Height: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalog().Register(tt.profile)
			assert.ErrorIs(t, err, ErrInvalidDevice)
		})
	}
}

func TestCatalog_ResolveGroupUsesRegistrationOrder(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Register(Profile{ID: "a", Width: 1, Height: 1}))
	require.NoError(t, c.Register(Profile{ID: "b", Width: 2, Height: 2}))
	require.NoError(t, c.Register(Profile{ID: "c", Width: 3, Height: 3}))
	require.NoError(t, c.RegisterGroup("odd", "c", "a"))

	profiles, err := c.ResolveGroup("odd")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].ID)
	assert.Equal(t, "c", profiles[1].ID)

	all, err := c.ResolveGroup(GroupAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCatalog_GroupErrors(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Register(Profile{ID: "a", Width: 1, Height: 1}))

	assert.ErrorIs(t, c.RegisterGroup("g", "a", "missing"), ErrUnknownDevice)
	require.NoError(t, c.RegisterGroup("g", "a"))
	assert.ErrorIs(t, c.RegisterGroup("g", "a"), ErrDuplicateGroup)
	assert.ErrorIs(t, c.RegisterGroup(GroupAll, "a"), ErrDuplicateGroup)

	_, err := c.ResolveGroup("nope")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	c := Defaults()
	assert.Len(t, c.Profiles(), len(DefaultProfiles))

	mobile, err := c.ResolveGroup("mobile")
	require.NoError(t, err)
	require.Len(t, mobile, 3)
	assert.Equal(t, "mobile_small", mobile[0].ID)

	desktop, err := c.Resolve(DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, 1920, desktop.Width)
	assert.Equal(t, 1080, desktop.Height)
}
