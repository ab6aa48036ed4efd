package dto

// UpsertLetterTemplateRequest payload for creating or replacing a template.
type UpsertLetterTemplateRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	LetterType   string  `json:"letterType" validate:"required"`
	Content      string  `json:"content"`
	GoogleDocURL *string `json:"googleDocUrl" validate:"omitempty,url"`
}
