// Package models defines the domain types shared across the application.
package models

// Recipe is the persisted recipe aggregate. The id is assigned by the store
// at insertion time and is never taken from an external source.
type Recipe struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Cuisine         string   `json:"cuisine,omitempty"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Tags            []string `json:"tags"`
	CookTimeMinutes *int     `json:"cookTimeMinutes,omitempty"`
	Image           string   `json:"image,omitempty"`
}
