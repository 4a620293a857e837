package model

import "time"

// Course levels accepted by the catalog.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is one entry of the public course catalog.
type Course struct {
	ID          string    `json:"_id" bson:"_id" yaml:"-"`
	Slug        string    `json:"slug" bson:"slug" yaml:"slug"`
	Title       string    `json:"title" bson:"title" yaml:"title"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	Image       string    `json:"image" bson:"image" yaml:"image"`
	Duration    string    `json:"duration" bson:"duration" yaml:"duration"`
	Level       string    `json:"level" bson:"level" yaml:"level"`
	Price       float64   `json:"price" bson:"price" yaml:"price"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}
