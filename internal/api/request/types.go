package request

// SubmitCardRequest is the request body for submitting a card. Beats and
// LosesTo must be given together; when they are, the new card's first two
// precedents are recorded against them.
type SubmitCardRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Stats       [4]*int `json:"stats"`
	Beats       *int64  `json:"beats,omitempty"`
	LosesTo     *int64  `json:"loses_to,omitempty"`
}

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	HandSize int `json:"hand_size"`
}

// VerdictRequest is the request body for judging a pair
type VerdictRequest struct {
	C1     int64 `json:"c1"`
	C2     int64 `json:"c2"`
	Winner int64 `json:"winner"`
}
