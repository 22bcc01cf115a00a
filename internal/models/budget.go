// internal/models/budget.go
package models

import (
	"github.com/google/uuid"
)

type Budget struct {
	BaseModel
	FarmID  uuid.UUID `json:"farm_id" gorm:"type:uuid;not null;index"`
	Season  string    `json:"season" gorm:"size:50;not null"`
	Year    int       `json:"year" gorm:"not null;index"`
	Planned float64   `json:"planned" gorm:"type:decimal(14,2);default:0"`
	Actual  float64   `json:"actual" gorm:"type:decimal(14,2);default:0"`

	Farm    Farm          `json:"farm,omitempty" gorm:"foreignKey:FarmID"`
	Entries []BudgetEntry `json:"entries,omitempty" gorm:"foreignKey:BudgetID"`
}

type BudgetEntry struct {
	BaseModel
	BudgetID uuid.UUID `json:"budget_id" gorm:"type:uuid;not null;index"`
	Label    string    `json:"label" gorm:"size:255;not null"`
	Kind     string    `json:"kind" gorm:"type:varchar(20);not null"` // expense or income
	Planned  float64   `json:"planned" gorm:"type:decimal(14,2);default:0"`
	Actual   float64   `json:"actual" gorm:"type:decimal(14,2);default:0"`

	Budget Budget `json:"budget,omitempty" gorm:"foreignKey:BudgetID"`
}
