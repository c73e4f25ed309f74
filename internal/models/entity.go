// Package models defines core data structures for entities, reviews, and analysis results.
package models

// Entity is a reviewed object (a hotel) described by structured attributes.
// Entities are loaded once at startup and never mutated.
type Entity struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
}

// ReviewSet holds the reviews registered for one entity.
// Anomalous reviews are known not to match the entity and serve as a control group.
type ReviewSet struct {
	Normal    []string `json:"normal" yaml:"normal"`
	Anomalous []string `json:"anomalous" yaml:"anomalous"`
}
