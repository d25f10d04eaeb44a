package index

import (
	"encoding/binary"
	"math"

	"github.com/sprsantander/padron/internal/domain"
)

// payloadFields are the hash fields returned by searches, plus the score
// synthesized by FT.SEARCH.
var payloadFields = []string{
	"id", "name", "specialty", "registry", "city", "status", "office",
	"__vector_score",
}

// fieldsFromEntry flattens a record and its vector into hash fields.
func fieldsFromEntry(e Entry) map[string]string {
	return map[string]string{
		"id":        e.Record.ID,
		"name":      e.Record.Name,
		"specialty": e.Record.Specialty,
		"registry":  e.Record.Registry,
		"city":      e.Record.City,
		"status":    string(e.Record.Status),
		"office":    e.Record.Office,
		"vector":    vectorField(e.Vector),
	}
}

// recordFromFields rebuilds a record payload from hash fields. keyID is the
// id recovered from the entry key, used when the id field is missing.
func recordFromFields(fields map[string]string, keyID string) domain.Record {
	id := fields["id"]
	if id == "" {
		id = keyID
	}
	return domain.Record{
		ID:        id,
		Name:      fields["name"],
		Specialty: fields["specialty"],
		Registry:  fields["registry"],
		City:      fields["city"],
		Status:    domain.Status(fields["status"]),
		Office:    fields["office"],
	}
}

// vectorField encodes a vector as the little-endian FLOAT32 blob FT.SEARCH expects.
func vectorField(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
