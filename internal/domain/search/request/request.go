package request

import (
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

// Paging limits shared by nearest and aggregation queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
	DefaultPage     = 1
)

// Target names the clustering a query runs against.
type Target struct {
	Dataset     string
	VectorField string
	Alias       string
}

// Validate checks that every part of the target is set.
func (t Target) Validate() error {
	switch {
	case t.Dataset == "":
		return fmt.Errorf("dataset: %w", domain.ErrMissingTarget)
	case t.VectorField == "":
		return fmt.Errorf("vector field: %w", domain.ErrMissingTarget)
	case t.Alias == "":
		return fmt.Errorf("alias: %w", domain.ErrMissingTarget)
	}
	return nil
}

func normalizePaging(pageSize, page int) (int, int, error) {
	if pageSize < 0 || page < 0 {
		return 0, 0, fmt.Errorf("page and page_size must not be negative: %w", domain.ErrInvalidQuery)
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page == 0 {
		page = DefaultPage
	}
	return pageSize, page, nil
}
