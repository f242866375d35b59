package models

import (
	"fmt"
	"strconv"
)

// SchoolTerm identifies the per-semester database a request works against.
type SchoolTerm struct {
	Semester int `json:"semester"`
	Year     int `json:"year"`
}

// Key is the cache key and database-name suffix of the term, e.g. "12024".
func (t SchoolTerm) Key() string {
	return strconv.Itoa(t.Semester) + strconv.Itoa(t.Year)
}

func (t SchoolTerm) String() string {
	return fmt.Sprintf("semester %d of %d-%d", t.Semester, t.Year, t.Year+1)
}

// Validate checks the semester and year ranges
func (t SchoolTerm) Validate() error {
	if t.Semester < 1 || t.Semester > 3 {
		return fmt.Errorf("semester must be 1, 2 or 3, got %d", t.Semester)
	}
	if t.Year < 2000 || t.Year > 2100 {
		return fmt.Errorf("year %d is out of range", t.Year)
	}
	return nil
}
