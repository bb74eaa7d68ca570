package organization

import (
	"context"
	"time"
)

type Entity struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	Address       string `json:"address"`
}

type UpdateInput struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	ContactEmail  *string `json:"contact_email"`
	ContactPhone  *string `json:"contact_phone"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	GetByName(ctx context.Context, name string) (*Entity, error)
	List(ctx context.Context) ([]Entity, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Entity, error)
}
