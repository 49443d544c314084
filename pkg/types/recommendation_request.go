package types

// RecommendationRequest asks a professor for a letter of recommendation.
type RecommendationRequest struct {
	ID             int64         `json:"id" db:"id"`
	RequesterEmail string        `json:"requesterEmail" db:"requester_email"`
	ProfessorEmail string        `json:"professorEmail" db:"professor_email"`
	Explanation    string        `json:"explanation" db:"explanation"`
	DateRequested  LocalDateTime `json:"dateRequested" db:"date_requested"`
	DateNeeded     LocalDateTime `json:"dateNeeded" db:"date_needed"`
	Done           bool          `json:"done" db:"done"`
}

func (r *RecommendationRequest) RecordKey() int64      { return r.ID }
func (r *RecommendationRequest) SetRecordKey(id int64) { r.ID = id }

// RecommendationRequestSchema describes how backends store recommendation requests.
var RecommendationRequestSchema = Schema[int64, *RecommendationRequest]{
	Table:    TableRecommendationRequests,
	New:      func() *RecommendationRequest { return &RecommendationRequest{} },
	Sequence: Int64Sequence,
}
