// Package scenario defines scenario descriptors, their validation and the YAML
// run configuration they are loaded from.
package scenario

import (
	"sort"
	"strings"
)

// ExpectedOutcome declares whether a scenario is expected to satisfy its assertions.
type ExpectedOutcome string

const (
	// OutcomeNormal scenarios pass when every assertion holds.
	OutcomeNormal ExpectedOutcome = "normal"
	// OutcomeExpectedFailure marks a known defect: some assertion is expected to fail.
	OutcomeExpectedFailure ExpectedOutcome = "expected-failure"
)

// Action is one step executed before the assertions.
type Action struct {
	Name string            `yaml:"name" json:"name"`
	Args map[string]string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Assertion is a predicate observed on the page compared against Expected.
type Assertion struct {
	Predicate string      `yaml:"predicate" json:"predicate"`
	Selector  string      `yaml:"selector,omitempty" json:"selector,omitempty"`
	Attribute string      `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Operator  string      `yaml:"operator,omitempty" json:"operator,omitempty"`
	Expected  interface{} `yaml:"expected" json:"expected"`
}

// Spec is the mutable input to Build, usually decoded from YAML.
type Spec struct {
	Name            string          `yaml:"name"`
	Device          string          `yaml:"device,omitempty"`
	DeviceGroup     string          `yaml:"device_group,omitempty"`
	Page            string          `yaml:"page"`
	Actions         []Action        `yaml:"actions"`
	Assertions      []Assertion     `yaml:"assertions"`
	ExpectedOutcome ExpectedOutcome `yaml:"expected_outcome,omitempty"`
	Reason          string          `yaml:"reason,omitempty"`
	ExcludeDevices  []string        `yaml:"exclude_devices,omitempty"`
}

// Descriptor is a validated, immutable scenario. Accessors return copies.
type Descriptor struct {
	name        string
	device      string
	deviceGroup string
	page        string
	actions     []Action
	assertions  []Assertion
	expected    ExpectedOutcome
	reason      string
	excluded    map[string]struct{}
}

// Name returns the scenario name.
func (d *Descriptor) Name() string { return d.name }

// Device returns the explicit device id, or "" when a group is used.
func (d *Descriptor) Device() string { return d.device }

// DeviceGroup returns the device group name, or "" when an explicit device is used.
func (d *Descriptor) DeviceGroup() string { return d.deviceGroup }

// Page returns the target page id.
func (d *Descriptor) Page() string { return d.page }

// ExpectedOutcome returns the declared outcome.
func (d *Descriptor) ExpectedOutcome() ExpectedOutcome { return d.expected }

// Reason returns why an expected failure is expected.
func (d *Descriptor) Reason() string { return d.reason }

// Actions returns a copy of the action list.
func (d *Descriptor) Actions() []Action {
	out := make([]Action, len(d.actions))
	for i, a := range d.actions {
		out[i] = Action{Name: a.Name, Args: copyArgs(a.Args)}
	}

	return out
}

// Assertions returns a copy of the assertion list.
func (d *Descriptor) Assertions() []Assertion {
	return append([]Assertion(nil), d.assertions...)
}

// Excludes reports whether the device id is excluded.
func (d *Descriptor) Excludes(id string) bool {
	_, ok := d.excluded[id]

	return ok
}

// ExcludedDevices returns the excluded ids, sorted.
func (d *Descriptor) ExcludedDevices() []string {
	out := make([]string, 0, len(d.excluded))
	for id := range d.excluded {
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

// DeviceAxis describes the device axis for logs, e.g. "group:mobile".
func (d *Descriptor) DeviceAxis() string {
	if d.deviceGroup != "" {
		return "group:" + d.deviceGroup
	}

	return d.device
}

// FillPairs returns the fields a fill action writes, in the order they are filled.
// Explicit selector/value args yield one pair; otherwise every arg is an
// element id mapped to "#id", sorted by id.
func FillPairs(args map[string]string) [][2]string {
	if sel, ok := args["selector"]; ok {
		return [][2]string{{sel, args["value"]}}
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		sel := k
		if !strings.HasPrefix(sel, "#") {
			sel = "#" + sel
		}

		out = append(out, [2]string{sel, args[k]})
	}

	return out
}

func copyArgs(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}

	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
