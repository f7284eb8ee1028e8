package models

// Ingredient is a catalogue entry; the (name, measurement unit) pair is unique
type Ingredient struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredients_name_unit"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredients_name_unit"`
}
