package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/uimatrix/internal/device"
)

var (
	errNoScenarios = errors.New("run configuration declares no scenarios")
)

// File is the on-disk run configuration.
type File struct {
	BaseURL   string              `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Devices   []device.Profile    `yaml:"devices,omitempty" validate:"dive"`
	Groups    map[string][]string `yaml:"groups,omitempty" validate:"dive,keys,required,endkeys,min=1,dive,required"`
	Pages     map[string]string   `yaml:"pages,omitempty" validate:"dive,keys,required,endkeys,required"`
	Scenarios []Spec              `yaml:"scenarios"`
}

// RunConfig is a loaded, validated run configuration.
type RunConfig struct {
	// BaseURL overrides the environment base URL when set.
	BaseURL string
	Catalog *device.Catalog
	// Pages maps page ids to paths or absolute URLs.
	Pages       map[string]string
	Descriptors []*Descriptor
}

// Loader loads run configuration files.
type Loader interface {
	LoadFile(path string) (*RunConfig, error)
	Parse(data []byte) (*RunConfig, error)
}

type loader struct {
	log      logrus.FieldLogger
	validate *validator.Validate
	defaults map[string]string
}

// NewLoader creates a run configuration loader. defaultPages is used when a file
// declares no pages.
func NewLoader(log logrus.FieldLogger, defaultPages map[string]string) Loader {
	return &loader{
		log:      log.WithField("component", "scenario_loader"),
		validate: validator.New(),
		defaults: defaultPages,
	}
}

// LoadFile reads and parses the run configuration at path.
func (l *loader) LoadFile(path string) (*RunConfig, error) {
	l.log.WithField("path", path).Debug("loading run configuration")

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates a run configuration. Every scenario is built even
// after a failure so all invalid scenarios are reported together.
func (l *loader) Parse(data []byte) (*RunConfig, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := l.validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("validating run configuration: %w", err)
	}

	if len(file.Scenarios) == 0 {
		return nil, errNoScenarios
	}

	catalog, err := l.buildCatalog(&file)
	if err != nil {
		return nil, err
	}

	pages := file.Pages
	if len(pages) == 0 {
		pages = l.defaults
	}

	var problems *multierror.Error

	descriptors := make([]*Descriptor, 0, len(file.Scenarios))

	for _, spec := range file.Scenarios {
		d, err := Build(spec)
		if err != nil {
			problems = multierror.Append(problems, err)
			continue
		}

		descriptors = append(descriptors, d)
	}

	if err := problems.ErrorOrNil(); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"devices":   len(catalog.Profiles()),
		"pages":     len(pages),
		"scenarios": len(descriptors),
	}).Debug("run configuration loaded")

	return &RunConfig{
		BaseURL:     file.BaseURL,
		Catalog:     catalog,
		Pages:       pages,
		Descriptors: descriptors,
	}, nil
}

// buildCatalog uses the default catalog when the file declares no devices. Groups
// declared in the file are added on top either way.
func (l *loader) buildCatalog(file *File) (*device.Catalog, error) {
	var catalog *device.Catalog

	if len(file.Devices) == 0 {
		catalog = device.Defaults()
	} else {
		catalog = device.NewCatalog()

		for _, p := range file.Devices {
			if err := catalog.Register(p); err != nil {
				return nil, fmt.Errorf("registering device: %w", err)
			}
		}
	}

	names := make([]string, 0, len(file.Groups))
	for name := range file.Groups {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := catalog.RegisterGroup(name, file.Groups[name]...); err != nil {
			return nil, fmt.Errorf("registering group: %w", err)
		}
	}

	return catalog, nil
}
