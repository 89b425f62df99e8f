// Package device provides the viewport/device catalog used to expand scenarios
// across screen sizes.
package device

import (
	"errors"
	"fmt"
	"sync"
)

// GroupAll is the implicit group that resolves to every registered profile.
const GroupAll = "all"

var (
	// ErrUnknownDevice is matched by UnknownDeviceError.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrDuplicateDevice is matched by DuplicateDeviceError.
	ErrDuplicateDevice = errors.New("duplicate device")
	// ErrInvalidDevice is returned when a profile has an empty id or non-positive dimensions.
	ErrInvalidDevice = errors.New("invalid device profile")
	// ErrDuplicateGroup is returned when a group name is registered twice.
	ErrDuplicateGroup = errors.New("duplicate device group")
)

// Profile is a named viewport. Profiles are immutable values.
type Profile struct {
	ID     string  `yaml:"id" json:"id" validate:"required"`
	Width  int     `yaml:"width" json:"width" validate:"gt=0"`
	Height int     `yaml:"height" json:"height" validate:"gt=0"`
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty" validate:"gte=0"`
	Mobile bool    `yaml:"mobile,omitempty" json:"mobile,omitempty"`
}

// String returns "id (WxH)".
func (p Profile) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.ID, p.Width, p.Height)
}

// UnknownDeviceError is returned when a device or group id is not registered.
type UnknownDeviceError struct {
	ID    string
	Group bool
}

func (e *UnknownDeviceError) Error() string {
	if e.Group {
		return fmt.Sprintf("unknown device group %q", e.ID)
	}

	return fmt.Sprintf("unknown device %q", e.ID)
}

// Is reports whether target is ErrUnknownDevice.
func (e *UnknownDeviceError) Is(target error) bool {
	return target == ErrUnknownDevice
}

// DuplicateDeviceError is returned when a device id is registered twice.
type DuplicateDeviceError struct {
	ID string
}

func (e *DuplicateDeviceError) Error() string {
	return fmt.Sprintf("device %q already registered", e.ID)
}

// Is reports whether target is ErrDuplicateDevice.
func (e *DuplicateDeviceError) Is(target error) bool {
	return target == ErrDuplicateDevice
}

// Catalog holds device profiles in registration order.
// It is populated at startup and only read afterwards.
type Catalog struct {
	mu       sync.RWMutex
	order    []string
	profiles map[string]Profile
	groups   map[string][]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		profiles: make(map[string]Profile),
		groups:   make(map[string][]string),
	}
}

// Register adds a profile.
func (c *Catalog) Register(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDevice)
	}

	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %s has non-positive dimensions %dx%d", ErrInvalidDevice, p.ID, p.Width, p.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.profiles[p.ID]; exists {
		return &DuplicateDeviceError{ID: p.ID}
	}

	if p.Scale == 0 {
		p.Scale = 1
	}

	c.profiles[p.ID] = p
	c.order = append(c.order, p.ID)

	return nil
}

// RegisterGroup names a set of already registered profiles.
func (c *Catalog) RegisterGroup(name string, ids ...string) error {
	if name == "" || name == GroupAll {
		return fmt.Errorf("%w: reserved or empty group name %q", ErrDuplicateGroup, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.groups[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGroup, name)
	}

	members := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := c.profiles[id]; !ok {
			return fmt.Errorf("group %s: %w", name, &UnknownDeviceError{ID: id})
		}

		members = append(members, id)
	}

	c.groups[name] = members

	return nil
}

// Resolve returns the profile registered under id.
func (c *Catalog) Resolve(id string) (Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.profiles[id]
	if !ok {
		return Profile{}, &UnknownDeviceError{ID: id}
	}

	return p, nil
}

// ResolveGroup returns the members of a group in catalog registration order,
// regardless of the order they were listed in when the group was registered.
func (c *Catalog) ResolveGroup(name string) ([]Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == GroupAll {
		return c.profilesLocked(), nil
	}

	members, ok := c.groups[name]
	if !ok {
		return nil, &UnknownDeviceError{ID: name, Group: true}
	}

	wanted := make(map[string]bool, len(members))
	for _, id := range members {
		wanted[id] = true
	}

	out := make([]Profile, 0, len(members))
	for _, id := range c.order {
		if wanted[id] {
			out = append(out, c.profiles[id])
		}
	}

	return out, nil
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.profiles[id]

	return ok
}

// HasGroup reports whether name is a registered group (or GroupAll).
func (c *Catalog) HasGroup(name string) bool {
	if name == GroupAll {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.groups[name]

	return ok
}

// Profiles returns every profile in registration order.
func (c *Catalog) Profiles() []Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.profilesLocked()
}

// Groups returns a copy of the group table.
func (c *Catalog) Groups() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]string, len(c.groups))
	for name, ids := range c.groups {
		out[name] = append([]string(nil), ids...)
	}

	return out
}

func (c *Catalog) profilesLocked() []Profile {
	out := make([]Profile, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.profiles[id])
	}

	return out
}
