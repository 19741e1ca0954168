package ledger

// TopEntry is one row of a top-N aggregation: total paise grouped by
// category (expenses) or person (contributions).
type TopEntry struct {
	ID         string
	Name       string
	TotalPaise int64
}
