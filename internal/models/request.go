package models

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes a request, accepting "hotel_id" as an alias of "entity_id".
// When both are present, "entity_id" wins.
func (r *CustomReviewRequest) UnmarshalJSON(data []byte) error {
	type plain CustomReviewRequest
	var aux struct {
		plain
		HotelID string `json:"hotel_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CustomReviewRequest(aux.plain)
	if r.EntityID == "" {
		r.EntityID = aux.HotelID
	}
	return nil
}

// Validate ensures both fields of the request are present.
// Whitespace-only review text is accepted; the embedding provider decides what it means.
func (r *CustomReviewRequest) Validate() error {
	switch {
	case r.EntityID == "" && r.ReviewText == "":
		return fmt.Errorf("entity_id and review_text are required")
	case r.EntityID == "":
		return fmt.Errorf("entity_id is required")
	case r.ReviewText == "":
		return fmt.Errorf("review_text is required")
	}
	return nil
}
