package exams

import "github.com/dmitrijs2005/provas/internal/models"

// Collection names one of the two snapshots.
type Collection string

const (
	CollectionUser    Collection = "user"
	CollectionCatalog Collection = "catalog"
)

// State is the lifecycle of one collection. There is no error state: a
// failed refresh falls back to whatever the collection was before it.
type State int32

const (
	StateEmpty State = iota
	StateLoaded
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers each time a collection publishes a new
// snapshot.
type Event struct {
	Collection Collection
	Records    []models.ExamRecord
}

func clone(list []models.ExamRecord) []models.ExamRecord {
	out := make([]models.ExamRecord, len(list))
	copy(out, list)
	return out
}
