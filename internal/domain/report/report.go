// Package report holds cluster reports: named JSON summaries stored in the
// project, outside any dataset.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

// MaxNameLength is the maximum report name length.
const MaxNameLength = 256

// Report is a stored cluster report.
type Report struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	Body      map[string]any `json:"report"`
	CreatedAt time.Time      `json:"created_at"`
}

// ValidateName checks a report name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("report name is required: %w", domain.ErrInvalidQuery)
	case len(name) > MaxNameLength:
		return fmt.Errorf("report name longer than %d: %w", MaxNameLength, domain.ErrInvalidQuery)
	}
	return nil
}
