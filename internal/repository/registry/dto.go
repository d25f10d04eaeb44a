package registry

import "github.com/sprsantander/padron/internal/domain"

// recordDTO is the on-disk JSON shape of a roster entry.
type recordDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Registry  string `json:"registry"`
	City      string `json:"city"`
	Status    string `json:"status"`
	Office    string `json:"office"`
}

func (d recordDTO) toDomain() domain.Record {
	return domain.Record{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Registry:  d.Registry,
		City:      d.City,
		Status:    domain.Status(d.Status),
		Office:    d.Office,
	}
}

func dtoFromDomain(r domain.Record) recordDTO {
	return recordDTO{
		ID:        r.ID,
		Name:      r.Name,
		Specialty: r.Specialty,
		Registry:  r.Registry,
		City:      r.City,
		Status:    string(r.Status),
		Office:    r.Office,
	}
}
