package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	ParentID string `json:"parent_id" validate:"omitempty,uuid"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
// ParentID distingue "no tocar" (nil) de "mover a raíz" (puntero a cadena vacía).
type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID *string `json:"parent_id"`
}

// CategoryResponse salida de una categoría.
// Ancestors trae la cadena de ancestros (del padre inmediato a la raíz) y
// solo se llena en la consulta individual.
type CategoryResponse struct {
	ID        string             `json:"id"`
	ParentID  string             `json:"parent_id,omitempty"`
	Name      string             `json:"name"`
	Ancestors []string           `json:"ancestors,omitempty"`
	Children  []CategoryResponse `json:"children,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CategoryListResponse árbol de categorías raíz con sus hijas.
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
}
