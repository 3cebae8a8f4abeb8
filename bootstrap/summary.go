package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/logger"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// SetOutput redirects the printed summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// DisplaySummary prints the registered definitions with their dependencies
// and the build levels of the graph, and logs the totals.
func (s *Summary) DisplaySummary(c *di.Container, log *logger.Logger) {
	w := s.out

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	defs := c.Definitions()
	instantiated := 0

	if len(defs) == 0 {
		fmt.Fprintf(w, "   └── No definitions registered\n")
	} else {
		fmt.Fprintf(w, "📦 Definitions (%d)\n", len(defs))
		for i, d := range defs {
			last := i == len(defs)-1
			prefix := "├──"
			if last {
				prefix = "└──"
			}
			status := "lazy"
			if d.Instantiated {
				status = "instantiated"
				instantiated++
			}
			fmt.Fprintf(w, "   %s %s %s%s (%s)\n", prefix, statusIcon(status), d.Name, describe(d), status)
			for j, dep := range d.Dependencies {
				fmt.Fprintf(w, "   %s 🔗 %s\n", depPrefix(last, j == len(d.Dependencies)-1), dep)
			}
		}
	}

	if levels, err := c.Levels(); err == nil && len(levels) > 0 {
		fmt.Fprintf(w, "\n🧭 Build Levels\n")
		for i, level := range levels {
			prefix := "├──"
			if i == len(levels)-1 {
				prefix = "└──"
			}
			fmt.Fprintf(w, "   %s %d: %s\n", prefix, i, strings.Join(level, ", "))
		}
	}

	fmt.Fprintf(w, "\n")

	if log != nil {
		log.Info("Startup summary", map[string]interface{}{
			"definitions":  len(defs),
			"instantiated": instantiated,
			"duration_ms":  s.startupDuration.Milliseconds(),
		})
	}
}

// describe renders roles and the primary marker, e.g. " [discountPolicy*]".
func describe(d di.DefinitionInfo) string {
	if len(d.Roles) == 0 {
		return ""
	}
	roles := strings.Join(d.Roles, ", ")
	if d.Primary {
		roles += "*"
	}
	return " [" + roles + "]"
}

func depPrefix(lastDef, lastDep bool) string {
	switch {
	case lastDef && lastDep:
		return "    └──"
	case lastDef:
		return "    ├──"
	case lastDep:
		return "│   └──"
	default:
		return "│   ├──"
	}
}

func statusIcon(status string) string {
	switch status {
	case "instantiated":
		return "✅"
	case "lazy":
		return "⚡"
	default:
		return "⚠️"
	}
}
