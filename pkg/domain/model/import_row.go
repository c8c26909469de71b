package model

// ImportRow is one row extracted from an external spreadsheet. Dates are
// already rendered to text by the reader.
type ImportRow struct {
	Code       string
	Name       string
	Category   string
	User       string
	Department string
	Location   string
	StartDate  string
}
