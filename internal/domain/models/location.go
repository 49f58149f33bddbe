package models

// Location backs the origin/destination autocomplete.
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	Division string `json:"division"`
}
