package models

// ImportRow is one parsed spreadsheet row, keyed by target field
type ImportRow struct {
	Row    int               `json:"row"`
	Data   map[string]string `json:"data" binding:"required"`
	Errors []string          `json:"errors,omitempty"`
}

// ImportPreview is the response of an import preview
type ImportPreview struct {
	Columns map[string]string `json:"columns"`
	Rows    []ImportRow       `json:"rows"`
	Valid   int               `json:"valid"`
	Invalid int               `json:"invalid"`
}

// ImportCommitRequest is the payload of an import commit
type ImportCommitRequest struct {
	Rows []ImportRow `json:"rows" binding:"required,min=1,dive"`
}

// ImportResult reports what an import commit did
type ImportResult struct {
	Inserted int         `json:"inserted"`
	Skipped  int         `json:"skipped"`
	Errors   []ImportRow `json:"errors"`
}
