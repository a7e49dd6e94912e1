package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/techdocs/component"
)

// Summary renders the startup report of a techdocs command.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the registered components and their live health to w.
func (s *Summary) Display(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	descs := registry.Describe()
	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	fmt.Fprintf(w, "Components\n")
	for i, d := range descs {
		fmt.Fprintf(w, "   %s %s [%s] %s\n", treePrefix(i, len(descs)), d.Name, d.Type, d.Details)
	}

	results := registry.HealthAll(ctx)
	healthy := 0
	fmt.Fprintf(w, "\nHealth\n")
	for i, h := range results {
		msg := ""
		if h.Message != "" {
			msg = " - " + h.Message
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthIcon(h.Status), h.Name,
			strings.ToLower(string(h.Status)), msg)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	if healthy == len(results) {
		fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n\n", healthy, len(results))
	} else {
		fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n\n", healthy, len(results))
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
