package models

// User represents a user record. Rows are soft-deleted through IsDeleted and
// never removed from the table.
type User struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName string `json:"firstName" gorm:"type:varchar(255);not null"`
	LastName  string `json:"lastName" gorm:"type:varchar(255);not null"`
	Email     string `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	Phone     string `json:"phone" gorm:"type:varchar(32);not null"`
	IsDeleted bool   `json:"isDeleted" gorm:"not null;default:false"`
}

// UserFields are the identity fields written by create and update.
type UserFields struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	UserFields
}

// UpdateUserRequest is the body of PATCH /users/:id. IsDeleted may be omitted
// or false; soft deletion only happens through DELETE /users/:id.
type UpdateUserRequest struct {
	UserFields
	IsDeleted *bool `json:"isDeleted" validate:"omitnil,eq=false"`
}

// NewUser builds an unsaved row from the identity fields.
func (f UserFields) NewUser() *User {
	return &User{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
	}
}
