package request

// UniverseQuery holds the optional filters of GET /api/universe.
type UniverseQuery struct {
	Frequency string
	MinYield  string
}
