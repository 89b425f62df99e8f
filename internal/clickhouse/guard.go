package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"
)

// ErrUnsafeHost is returned when a destructive operation targets a server whose
// hostname is not allowlisted.
var ErrUnsafeHost = errors.New("refusing destructive operation on non-allowlisted ClickHouse host")

// HostQuerier is the part of driver.Conn the guard needs.
type HostQuerier interface {
	QueryRow(ctx context.Context, query string, args ...any) driver.Row
}

// HostGuard checks the server hostname before tables are dropped.
type HostGuard interface {
	Check(ctx context.Context, conn HostQuerier) error
}

type hostGuard struct {
	log  logrus.FieldLogger
	safe []string
}

var _ HostGuard = (*hostGuard)(nil)

// NewHostGuard creates a guard over the safe hostnames. An empty list disables
// the check.
func NewHostGuard(log logrus.FieldLogger, safe []string) HostGuard {
	return &hostGuard{
		log:  log.WithField("component", "clickhouse.host_guard"),
		safe: safe,
	}
}

func (g *hostGuard) Check(ctx context.Context, conn HostQuerier) error {
	if len(g.safe) == 0 {
		g.log.Warn("no safe hostnames configured, skipping hostname check")

		return nil
	}

	var hostname string
	if err := conn.QueryRow(ctx, "SELECT hostName()").Scan(&hostname); err != nil {
		return fmt.Errorf("querying ClickHouse hostname: %w", err)
	}

	hostname = strings.TrimSpace(hostname)
	if !slices.Contains(g.safe, hostname) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsafeHost, hostname, strings.Join(g.safe, ", "))
	}

	g.log.WithField("hostname", hostname).Debug("hostname allowlisted")

	return nil
}
