package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/uimatrix/internal/device"
)

func testLoader() Loader {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	return NewLoader(log, map[string]string{"text_box": "/text-box"})
}

const minimalConfig = `
scenarios:
  - name: text_box_visible
    device_group: mobile
    page: text_box
    exclude_devices: [mobile_large]
    actions:
      - name: navigate
      - name: fill
        args:
          userName: Test User
    assertions:
      - predicate: is_visible
        selector: "#userName"
        expected: true
      - predicate: scroll_width
        operator: lte
        expected: 414
`

func TestParse_DefaultsCatalogAndPages(t *testing.T) {
	cfg, err := testLoader().Parse([]byte(minimalConfig))
	require.NoError(t, err)

	assert.Len(t, cfg.Catalog.Profiles(), len(device.DefaultProfiles))
	assert.Equal(t, "/text-box", cfg.Pages["text_box"])
	require.Len(t, cfg.Descriptors, 1)

	d := cfg.Descriptors[0]
	assert.Equal(t, "mobile", d.DeviceGroup())
	assert.True(t, d.Excludes("mobile_large"))
	assert.Equal(t, OpLessThanOrEqual, d.Assertions()[1].Operator)
}

func TestParse_CustomDevicesAndGroups(t *testing.T) {
	data := `
base_url: http://localhost:3000
devices:
  - {id: phone, width: 360, height: 740, mobile: true}
  - {id: wide, width: 2000, height: 1000}
groups:
  small: [phone]
pages:
  home: /
scenarios:
  - name: home_loads
    device_group: small
    page: home
    assertions:
      - predicate: has_horizontal_scroll
        expected: false
`
	cfg, err := testLoader().Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, map[string]string{"home": "/"}, cfg.Pages)

	profiles, err := cfg.Catalog.ResolveGroup("small")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "phone", profiles[0].ID)
	assert.InDelta(t, 1.0, profiles[0].Scale, 0.0001)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "no scenarios",
			data: "pages: {home: /}\n",
			want: errNoScenarios,
		},
		{
			name: "duplicate device",
			data: `
devices:
  - {id: a, width: 1, height: 1}
  - {id: a, width: 2, height: 2}
scenarios:
  - {name: s, device: a, page: home}
`,
			want: device.ErrDuplicateDevice,
		},
		{
			name: "group references unknown device",
			data: `
groups:
  tiny: [watch]
scenarios:
  - {name: s, device: desktop, page: text_box}
`,
			want: device.ErrUnknownDevice,
		},
		{
			name: "invalid scenarios are all reported",
			data: `
scenarios:
  - {name: one, page: text_box}
  - {name: two, device: desktop}
`,
			want: ErrInvalidScenario,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testLoader().Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_StructValidation(t *testing.T) {
	data := `
devices:
  - {id: "", width: 0, height: 10}
scenarios:
  - {name: s, device: desktop, page: text_box}
`
	_, err := testLoader().Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating run configuration")
}

func TestParse_ReportsAllInvalidScenarios(t *testing.T) {
	data := `
scenarios:
  - {name: one, page: text_box}
  - {name: two, device: desktop}
`
	_, err := testLoader().Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"one"`)
	assert.Contains(t, err.Error(), `"two"`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o600))

	cfg, err := testLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Descriptors, 1)

	_, err = testLoader().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
