package qdrant

// Response shapes for the subset of the Qdrant REST API the store uses.
// Only the fields we read are declared.

type retrieveResponse struct {
	Result []struct {
		ID any `json:"id"`
	} `json:"result"`
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float32        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

type collectionInfoResponse struct {
	Result struct {
		Status      string `json:"status"`
		PointsCount uint64 `json:"points_count"`
	} `json:"result"`
}
