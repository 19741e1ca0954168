package core

// Person is reference data a CONTRIBUTION points at. No ledger invariants
// attach to it beyond the id being resolvable.
type Person struct {
	ID   string
	Name string
}

// Category is reference data an EXPENSE points at.
type Category struct {
	ID   string
	Name string
}
