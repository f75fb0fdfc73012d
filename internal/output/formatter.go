package output

import (
	"strings"
	"time"

	"github.com/patrimoine/wealth-audit/internal/calculation"
	"github.com/patrimoine/wealth-audit/internal/domain"
)

// Report aggregates everything the renderers need: the current patrimoine,
// the projection rows, and the optional on-demand analyses. Renderers only
// ever read it.
type Report struct {
	GeneratedAt  time.Time                   `json:"generated_at"`
	Patrimoine   domain.PatrimoineSummary    `json:"patrimoine"`
	Projection   []domain.ProjectionRow      `json:"projection,omitempty"`
	Capacity     *calculation.CapacityResult `json:"capacity,omitempty"`
	Optimization *domain.OptimizationResult  `json:"optimization,omitempty"`
}

// Formatter defines a pluggable report renderer that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic
// formatting).
type Formatter interface {
	Format(report *Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
}

// GetFormatterByName fetches a registered formatter, nil when unknown
func GetFormatterByName(name string) Formatter {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}
