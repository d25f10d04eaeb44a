package domain

import "fmt"

// KeyPrefix namespaces all padron keys in the store.
const KeyPrefix = "padron:"

// Status is the affiliation status of a registry record.
type Status string

const (
	// StatusActive marks a currently affiliated professional.
	StatusActive Status = "active"
	// StatusInactive marks a professional no longer in the active roster.
	StatusInactive Status = "inactive"
)

// Record is a single professional entry in the society registry.
// The pipeline treats records as read-only input; the registry store owns them.
type Record struct {
	ID        string
	Name      string
	Specialty string
	Registry  string
	City      string
	Status    Status
	Office    string
}

// DocumentText builds the deterministic string embedded at index time.
// It is only used to produce a vector, never as a search key.
func (r Record) DocumentText() string {
	return fmt.Sprintf("entity: name=%s, specialty=%s, registry=%s, city=%s, office=%s",
		r.Name, r.Specialty, r.Registry, r.City, r.Office)
}

// Match is a retrieved record with its similarity score (higher is closer).
type Match struct {
	Record Record
	Score  float64
}
