package storage

import "time"

// Program is an academic program offered by the institution.
type Program struct {
	Code int    `json:"codcarrera"`
	Name string `json:"descarrera"`
}

// Feedback is a message left by a visitor on the vision page.
type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Message   string    `json:"mensaje"`
	CreatedAt time.Time `json:"creado_en"`
}
