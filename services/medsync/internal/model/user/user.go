package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
	RoleUser   Role = "user"
)

// Roles in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleStaff, RoleUser}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff, RoleUser:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type User struct {
	ID             int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DisplayUserID  string    `gorm:"column:display_user_id;type:varchar(64);not null;uniqueIndex" json:"display_user_id"`
	Name           string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Username       string    `gorm:"column:username;type:varchar(50);not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"column:email;type:varchar(100);not null;uniqueIndex" json:"email"`
	Phone          string    `gorm:"column:phone;type:varchar(30)" json:"phone"`
	PasswordHash   string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role           Role      `gorm:"column:role;type:varchar(20);not null;default:'user'" json:"role"`
	DateOfBirth    time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth"`
	Gender         Gender    `gorm:"column:gender;type:varchar(10)" json:"gender"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ProfilePicture *string   `gorm:"column:profile_picture;type:varchar(500)" json:"profile_picture"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
