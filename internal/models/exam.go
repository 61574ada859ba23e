// Package models defines the exam record shared by the local collection and
// the remote catalog.
package models

// Origin tells user-owned records apart from read-only catalog records.
type Origin string

const (
	OriginUser    Origin = "user"
	OriginCatalog Origin = "catalog"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	return o == OriginUser || o == OriginCatalog
}

// ExamRecord describes one exam.
type ExamRecord struct {
	// ID is unique within the collection the record belongs to. For user
	// records it is generated at creation; for catalog records it is the
	// remote document identifier.
	ID string

	// Name is the display name, never blank.
	Name string

	// Date is a display string; the core never parses it.
	Date string

	// Description is optional and empty when absent.
	Description string

	// StudyContent and RegistrationLink are only set on catalog records.
	StudyContent     string
	RegistrationLink string

	Origin Origin
}

// Deletable reports whether the record may be removed by the user.
func (r ExamRecord) Deletable() bool {
	return r.Origin == OriginUser
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf(list []ExamRecord, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
