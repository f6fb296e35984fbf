package model

import "time"

type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	ResetPasswordToken   *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
