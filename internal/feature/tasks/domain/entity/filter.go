package entity

import (
	"fmt"
	"strings"
)

// SortField names a sortable task attribute.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortDueDate   SortField = "dueDate"
	SortTitle     SortField = "title"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
)

var sortable = map[SortField]struct{}{
	SortCreatedAt: {},
	SortUpdatedAt: {},
	SortDueDate:   {},
	SortTitle:     {},
	SortPriority:  {},
	SortStatus:    {},
}

// SortKey is one component of a sort order.
type SortKey struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = []SortKey{{Field: SortCreatedAt, Desc: true}}

// ParseSort parses a comma separated list such as "-priority,dueDate".
// A leading '-' means descending. An empty string yields DefaultSort.
func ParseSort(raw string) ([]SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}

	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		desc := strings.HasPrefix(p, "-")
		name := SortField(strings.TrimPrefix(p, "-"))
		if _, ok := sortable[name]; !ok {
			return nil, fmt.Errorf("unknown sort field %q", name)
		}
		keys = append(keys, SortKey{Field: name, Desc: desc})
	}
	if len(keys) == 0 {
		return DefaultSort, nil
	}
	return keys, nil
}

// Filter narrows a task listing by exact field equality.
// Zero values mean "no constraint".
type Filter struct {
	Status   Status
	Priority Priority
	Sort     []SortKey
}
