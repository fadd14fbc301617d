package models

import id "roster/pkg/domain"

// Place is a locality an affiliate or leader belongs to.
type Place struct {
	ID   id.PlaceID `json:"id"`
	Name string     `json:"name"`
}
