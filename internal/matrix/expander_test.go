package matrix

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

func visible(name string, mutate func(s *scenario.Spec)) *scenario.Descriptor {
	spec := scenario.Spec{
		Name:        name,
		DeviceGroup: "mobile",
		Page:        "text_box",
		Assertions: []scenario.Assertion{
			{Predicate: scenario.PredicateIsVisible, Selector: "#userName", Expected: true},
		},
	}

	if mutate != nil {
		mutate(&spec)
	}

	d, err := scenario.Build(spec)
	if err != nil {
		panic(err) // fixtures are static
	}

	return d
}

func newExpander(t *testing.T) (Expander, *test.Hook) {
	t.Helper()

	log, hook := test.NewNullLogger()

	targets, err := page.NewTargets("https://demoqa.com", page.DefaultTargets)
	require.NoError(t, err)

	return NewExpander(log, device.Defaults(), targets), hook
}

func keys(plan *Plan) []string {
	out := make([]string, 0, len(plan.Scenarios))
	for _, s := range plan.Scenarios {
		out = append(out, s.Key)
	}

	return out
}

func TestExpand_GroupMinusExclusions(t *testing.T) {
	e, hook := newExpander(t)

	plan, err := e.Expand([]*scenario.Descriptor{
		visible("layout", func(s *scenario.Spec) { s.ExcludeDevices = []string{"mobile_medium"} }),
	}, Filter{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mobile_small/text_box/layout",
		"mobile_large/text_box/layout",
	}, keys(plan))

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "mobile_medium/text_box/layout", plan.Skipped[0].Key)

	var warned bool

	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["device"] == "mobile_medium" {
			warned = true
		}
	}

	assert.True(t, warned, "excluded pair is logged")
}

func TestExpand_AllGroupKeysUnique(t *testing.T) {
	e, _ := newExpander(t)

	plan, err := e.Expand([]*scenario.Descriptor{
		visible("a", func(s *scenario.Spec) { s.DeviceGroup = device.GroupAll }),
		visible("b", func(s *scenario.Spec) { s.DeviceGroup = device.GroupAll }),
	}, Filter{})
	require.NoError(t, err)

	require.Len(t, plan.Scenarios, 2*len(device.DefaultProfiles))

	seen := make(map[string]bool)
	for _, k := range keys(plan) {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}

	// Declaration order first, catalog order within a descriptor.
	assert.Equal(t, "mobile_small/text_box/a", plan.Scenarios[0].Key)
	assert.Equal(t, "desktop_large/text_box/a", plan.Scenarios[len(device.DefaultProfiles)-1].Key)
	assert.Equal(t, "mobile_small/text_box/b", plan.Scenarios[len(device.DefaultProfiles)].Key)
}

func TestExpand_ExplicitDevice(t *testing.T) {
	e, _ := newExpander(t)

	plan, err := e.Expand([]*scenario.Descriptor{
		visible("single", func(s *scenario.Spec) { s.DeviceGroup = ""; s.Device = "laptop" }),
	}, Filter{})
	require.NoError(t, err)

	require.Len(t, plan.Scenarios, 1)
	assert.Equal(t, 1366, plan.Scenarios[0].Device.Width)
	assert.Equal(t, "single", plan.Scenarios[0].Name())
	assert.Equal(t, "text_box", plan.Scenarios[0].Page())
}

func TestExpand_ConstructionErrors(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []*scenario.Descriptor
		want        error
	}{
		{
			name: "unknown device",
			descriptors: []*scenario.Descriptor{
				visible("x", func(s *scenario.Spec) { s.DeviceGroup = ""; s.Device = "watch" }),
			},
			want: device.ErrUnknownDevice,
		},
		{
			name: "unknown group",
			descriptors: []*scenario.Descriptor{
				visible("x", func(s *scenario.Spec) { s.DeviceGroup = "wearables" }),
			},
			want: device.ErrUnknownDevice,
		},
		{
			name: "unknown excluded device",
			descriptors: []*scenario.Descriptor{
				visible("x", func(s *scenario.Spec) { s.ExcludeDevices = []string{"watch"} }),
			},
			want: device.ErrUnknownDevice,
		},
		{
			name: "unknown page",
			descriptors: []*scenario.Descriptor{
				visible("x", func(s *scenario.Spec) { s.Page = "checkout" }),
			},
			want: page.ErrUnknownTarget,
		},
		{
			name: "duplicate key",
			descriptors: []*scenario.Descriptor{
				visible("x", nil),
				visible("x", func(s *scenario.Spec) { s.DeviceGroup = ""; s.Device = "mobile_small" }),
			},
			want: ErrDuplicateScenarioKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newExpander(t)

			plan, err := e.Expand(tt.descriptors, Filter{})
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpand_Filters(t *testing.T) {
	e, _ := newExpander(t)

	descriptors := []*scenario.Descriptor{
		visible("text_box_layout", func(s *scenario.Spec) { s.DeviceGroup = device.GroupAll }),
		visible("text_box_fill", func(s *scenario.Spec) { s.DeviceGroup = device.GroupAll }),
	}

	plan, err := e.Expand(descriptors, Filter{Group: "tablet", Name: "fill"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tablet_portrait/text_box/text_box_fill",
		"tablet_landscape/text_box/text_box_fill",
	}, keys(plan))

	_, err = e.Expand(descriptors, Filter{Group: "nope"})
	assert.ErrorIs(t, err, device.ErrUnknownDevice)
}
