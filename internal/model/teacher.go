package model

import "time"

type TeacherCategory string

const (
	TeacherCategoryTitular  TeacherCategory = "titular"
	TeacherCategoryAuxiliar TeacherCategory = "auxiliar"
)

// Teacher represents a staff member who gives classes
type Teacher struct {
	ID              int64           `json:"id"`
	TelegramID      int64           `json:"telegram_id"`
	Name            string          `json:"name"`
	Category        TeacherCategory `json:"category"`
	ContractedHours float64         `json:"contracted_hours"` // contracted hours per week
	CreatedAt       time.Time       `json:"created_at"`
}

// IsTitular checks if the teacher is a titular (lead) teacher
func (t *Teacher) IsTitular() bool {
	return t.Category == TeacherCategoryTitular
}
