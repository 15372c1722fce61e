package skills

import (
	"fmt"
	"strings"
)

// CatalogError lists every problem found while validating a catalog.
type CatalogError struct {
	Problems []string
}

func (e *CatalogError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid skill catalog: %s", e.Problems[0])
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invalid skill catalog (%d problems):\n", len(e.Problems)))
	for i, p := range e.Problems {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, p))
	}
	return sb.String()
}
