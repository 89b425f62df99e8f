package device

// DefaultProfiles are the common viewport sizes of the DemoQA suite.
var DefaultProfiles = []Profile{
	{ID: "mobile_small", Width: 375, Height: 667, Mobile: true},  // iPhone SE
	{ID: "mobile_medium", Width: 390, Height: 844, Mobile: true}, // iPhone 12/13
	{ID: "mobile_large", Width: 414, Height: 896, Mobile: true},  // iPhone 11 Pro Max
	{ID: "tablet_portrait", Width: 768, Height: 1024},            // iPad
	{ID: "tablet_landscape", Width: 1024, Height: 768},           // iPad landscape
	{ID: "laptop", Width: 1366, Height: 768},
	{ID: "laptop_large", Width: 1440, Height: 900}, // MacBook Pro
	{ID: "desktop", Width: 1920, Height: 1080},     // Full HD
	{ID: "desktop_large", Width: 2560, Height: 1440},
}

// DefaultGroups groups DefaultProfiles by form factor.
var DefaultGroups = map[string][]string{
	"mobile":  {"mobile_small", "mobile_medium", "mobile_large"},
	"tablet":  {"tablet_portrait", "tablet_landscape"},
	"laptop":  {"laptop", "laptop_large"},
	"desktop": {"desktop", "desktop_large"},
}

// DefaultDevice is the viewport used when a browser context is first opened.
const DefaultDevice = "desktop"

// Defaults returns a catalog populated with DefaultProfiles and DefaultGroups.
func Defaults() *Catalog {
	c := NewCatalog()

	for _, p := range DefaultProfiles {
		// Static table, registration cannot fail.
		_ = c.Register(p)
	}

	for _, name := range []string{"mobile", "tablet", "laptop", "desktop"} {
		_ = c.RegisterGroup(name, DefaultGroups[name]...)
	}

	return c
}
