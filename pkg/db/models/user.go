package models

import (
	"time"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors an identity-provider account inside the backend.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Subject   string         `gorm:"column:subject;not null;uniqueIndex"`
	Email     string         `gorm:"column:email;not null"`
	FirstName string         `gorm:"column:first_name;not null"`
	LastName  string         `gorm:"column:last_name;not null"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	return nil
}
