// Package config handles configuration loading and management
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds the environment configuration of a run.
type AppConfig struct {
	BaseURL          string
	ChromeURL        string
	Headless         bool
	ArtifactDir      string
	ArtifactMaxBytes int64
	Lanes            int
	NavigationRate   float64
	ClickhouseURL    string
	// SafeHostnames allowlists ClickHouse servers teardown may drop tables on.
	SafeHostnames []string
	LogLevel      string
}

// Load reads configuration from environment variables and the given .env files.
// With no files, ".env" is loaded when present.
func Load(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		// It's okay if the default file doesn't exist
		if len(envFiles) > 0 || !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &AppConfig{
		BaseURL:       getEnv("BASE_URL", DefaultBaseURL),
		ChromeURL:     getEnv("CHROME_URL", ""),
		ArtifactDir:   getEnv("ARTIFACT_DIR", DefaultArtifactDir),
		ClickhouseURL: getEnv("CLICKHOUSE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	headless, err := strconv.ParseBool(getEnv("HEADLESS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEADLESS: %w", err)
	}
	cfg.Headless = headless

	maxBytes, err := strconv.ParseInt(getEnv("ARTIFACT_MAX_BYTES", strconv.FormatInt(DefaultArtifactMaxBytes, 10)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ARTIFACT_MAX_BYTES: %w", err)
	}
	cfg.ArtifactMaxBytes = maxBytes

	lanes, err := strconv.Atoi(getEnv("LANES", strconv.Itoa(DefaultLanes)))
	if err != nil {
		return nil, fmt.Errorf("invalid LANES: %w", err)
	}
	cfg.Lanes = lanes

	rate, err := strconv.ParseFloat(getEnv("NAVIGATION_RATE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NAVIGATION_RATE: %w", err)
	}
	cfg.NavigationRate = rate

	for _, host := range strings.Split(getEnv("CLICKHOUSE_SAFE_HOSTNAMES", ""), ",") {
		if host = strings.TrimSpace(host); host != "" {
			cfg.SafeHostnames = append(cfg.SafeHostnames, host)
		}
	}

	return cfg, nil
}

func (c *AppConfig) String() string {
	chromeDisplay := c.ChromeURL
	if chromeDisplay == "" {
		chromeDisplay = "(launch local chrome)"
	}

	clickhouseDisplay := "(disabled)"
	if c.ClickhouseURL != "" {
		clickhouseDisplay = maskURL(c.ClickhouseURL)
	}

	safeDisplay := "(any)"
	if len(c.SafeHostnames) > 0 {
		safeDisplay = strings.Join(c.SafeHostnames, ", ")
	}

	rateDisplay := "unlimited"
	if c.NavigationRate > 0 {
		rateDisplay = fmt.Sprintf("%.2f/s", c.NavigationRate)
	}

	return fmt.Sprintf(`Current Configuration:
======================
Base URL:           %s
Chrome URL:         %s
Headless:           %t
Artifact Dir:       %s
Artifact Max Bytes: %d
Lanes:              %d
Navigation Rate:    %s
ClickHouse URL:     %s
Safe Hostnames:     %s
Log Level:          %s`,
		c.BaseURL,
		chromeDisplay,
		c.Headless,
		c.ArtifactDir,
		c.ArtifactMaxBytes,
		c.Lanes,
		rateDisplay,
		clickhouseDisplay,
		safeDisplay,
		c.LogLevel,
	)
}

// maskURL hides the password of a connection URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}

	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "********")
	}

	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
