package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientService provides ingredient lookup and loading
type IngredientService interface {
	// ListIngredients returns ingredients whose name starts with namePrefix, case-insensitively
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, error)
	// ImportIngredients inserts the missing (name, unit) pairs and reports how many were added
	ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error)
}

type ingredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

// escapeLike escapes the LIKE wildcards of user input with '!'
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

func (s *ingredientService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '!'`, strings.ToLower(escapeLike(prefix))+"%")
	}

	items := make([]models.Ingredient, 0)
	if err := q.Order("name").Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFoundOr(err, "ingredient")
	}
	return &ingredient, nil
}

func validateIngredient(name, unit string) error {
	if name == "" {
		return newValidationError("name", ReasonEmpty, "name is required")
	}
	if unit == "" {
		return newValidationError("measurement_unit", ReasonEmpty, "measurement unit is required")
	}
	return nil
}

func (s *ingredientService) CreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, error) {
	name, unit = strings.TrimSpace(name), strings.TrimSpace(unit)
	if err := validateIngredient(name, unit); err != nil {
		return nil, err
	}

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, conflictOr(err, fmt.Sprintf("ingredient %q (%s) already exists", name, unit))
	}
	return &ingredient, nil
}

func (s *ingredientService) ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error) {
	rows := make([]models.Ingredient, 0, len(items))
	for _, item := range items {
		name, unit := strings.TrimSpace(item.Name), strings.TrimSpace(item.MeasurementUnit)
		if err := validateIngredient(name, unit); err != nil {
			return 0, err
		}
		rows = append(rows, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("import ingredients: %w", res.Error)
	}

	log.WithFields(logrus.Fields{"received": len(rows), "created": res.RowsAffected}).Info("Ingredients imported")
	return res.RowsAffected, nil
}

// ParseIngredientsCSV reads "name,measurement_unit" rows without a header.
// Blank lines are skipped; a row with fewer than two columns is an error.
func ParseIngredientsCSV(r io.Reader) ([]models.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var items []models.Ingredient
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) < 2 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected name and measurement unit, got %d column(s)", line, len(row))
		}
		items = append(items, models.Ingredient{
			Name:            strings.TrimSpace(row[0]),
			MeasurementUnit: strings.TrimSpace(row[1]),
		})
	}
}
