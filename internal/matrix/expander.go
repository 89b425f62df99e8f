// Package matrix expands scenario descriptors across device profiles.
package matrix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// ErrDuplicateScenarioKey is returned when two expanded scenarios share a key.
var ErrDuplicateScenarioKey = errors.New("duplicate scenario key")

// Scenario is a descriptor bound to one device profile.
type Scenario struct {
	Descriptor *scenario.Descriptor
	Device     device.Profile
	Key        string
}

// Name returns the scenario name.
func (s Scenario) Name() string { return s.Descriptor.Name() }

// Page returns the target page id.
func (s Scenario) Page() string { return s.Descriptor.Page() }

// Skipped is a device/scenario pair dropped by an exclusion.
type Skipped struct {
	Key      string `json:"key"`
	Scenario string `json:"scenario"`
	Device   string `json:"device"`
	Page     string `json:"page"`
	Reason   string `json:"reason"`
}

// Key formats the unique scenario key <device-id>/<page-id>/<scenario-name>.
func Key(deviceID, pageID, name string) string {
	return deviceID + "/" + pageID + "/" + name
}

// Filter narrows an expansion. The zero value keeps everything.
type Filter struct {
	// Group keeps only devices that are members of this group.
	Group string
	// Name keeps only scenarios whose name contains this substring.
	Name string
}

func (f Filter) empty() bool {
	return f.Group == "" && f.Name == ""
}

// Plan is the ordered output of an expansion.
type Plan struct {
	Scenarios []Scenario
	Skipped   []Skipped
}

// Expander turns descriptors into scenarios.
type Expander interface {
	Expand(descriptors []*scenario.Descriptor, filter Filter) (*Plan, error)
}

type expander struct {
	log     logrus.FieldLogger
	catalog *device.Catalog
	targets *page.Targets
}

// NewExpander creates an expander over catalog. When targets is non-nil every
// descriptor page must be one of its ids.
func NewExpander(log logrus.FieldLogger, catalog *device.Catalog, targets *page.Targets) Expander {
	return &expander{
		log:     log.WithField("component", "matrix"),
		catalog: catalog,
		targets: targets,
	}
}

// Expand resolves each descriptor's device axis in declaration order and emits
// one scenario per remaining profile in catalog order. Any construction error
// aborts the whole expansion.
func (e *expander) Expand(descriptors []*scenario.Descriptor, filter Filter) (*Plan, error) {
	var keep map[string]bool

	if filter.Group != "" {
		members, err := e.catalog.ResolveGroup(filter.Group)
		if err != nil {
			return nil, fmt.Errorf("resolving filter group: %w", err)
		}

		keep = make(map[string]bool, len(members))
		for _, p := range members {
			keep[p.ID] = true
		}
	}

	plan := &Plan{}
	seen := make(map[string]bool)

	for _, d := range descriptors {
		if err := e.checkPages(d); err != nil {
			return nil, err
		}

		for _, id := range d.ExcludedDevices() {
			if !e.catalog.Has(id) {
				return nil, fmt.Errorf("scenario %s exclusion: %w", d.Name(), &device.UnknownDeviceError{ID: id})
			}
		}

		profiles, err := e.resolve(d)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", d.Name(), err)
		}

		for _, p := range profiles {
			key := Key(p.ID, d.Page(), d.Name())

			if seen[key] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateScenarioKey, key)
			}

			seen[key] = true

			if !filter.empty() && !filter.matches(d, p, keep) {
				continue
			}

			if d.Excludes(p.ID) {
				skip := Skipped{
					Key:      key,
					Scenario: d.Name(),
					Device:   p.ID,
					Page:     d.Page(),
					Reason:   "device excluded",
				}

				e.log.WithFields(logrus.Fields{
					"scenario": d.Name(),
					"device":   p.ID,
					"page":     d.Page(),
				}).Warn("skipping excluded device")

				plan.Skipped = append(plan.Skipped, skip)

				continue
			}

			plan.Scenarios = append(plan.Scenarios, Scenario{Descriptor: d, Device: p, Key: key})
		}
	}

	e.log.WithFields(logrus.Fields{
		"descriptors": len(descriptors),
		"scenarios":   len(plan.Scenarios),
		"skipped":     len(plan.Skipped),
	}).Info("expanded scenario matrix")

	return plan, nil
}

// checkPages verifies the target page and every page a navigate action switches to.
func (e *expander) checkPages(d *scenario.Descriptor) error {
	if e.targets == nil {
		return nil
	}

	if !e.targets.Has(d.Page()) {
		return fmt.Errorf("scenario %s: %w: %s", d.Name(), page.ErrUnknownTarget, d.Page())
	}

	for _, a := range d.Actions() {
		if id := a.Args["page"]; a.Name == scenario.ActionNavigate && id != "" && !e.targets.Has(id) {
			return fmt.Errorf("scenario %s navigate: %w: %s", d.Name(), page.ErrUnknownTarget, id)
		}
	}

	return nil
}

func (e *expander) resolve(d *scenario.Descriptor) ([]device.Profile, error) {
	if d.DeviceGroup() != "" {
		return e.catalog.ResolveGroup(d.DeviceGroup())
	}

	p, err := e.catalog.Resolve(d.Device())
	if err != nil {
		return nil, err
	}

	return []device.Profile{p}, nil
}

func (f Filter) matches(d *scenario.Descriptor, p device.Profile, keep map[string]bool) bool {
	if keep != nil && !keep[p.ID] {
		return false
	}

	return f.Name == "" || strings.Contains(d.Name(), f.Name)
}
