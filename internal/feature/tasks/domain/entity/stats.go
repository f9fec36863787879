package entity

// Summary is the single-row dashboard rollup.
type Summary struct {
	Total        int64
	Completed    int64
	Pending      int64
	InProgress   int64
	HighPriority int64
}

// GroupCount is one row of a grouped count.
type GroupCount struct {
	Key   string
	Count int64
}

// DashboardStats bundles the three dashboard rollups.
type DashboardStats struct {
	Summary           Summary
	PriorityBreakdown []GroupCount
	StatusBreakdown   []GroupCount
}
