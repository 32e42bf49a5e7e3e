package user

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"medsync/packages/response"
	userModel "medsync/services/medsync/internal/model/user"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
	upperRegex    = regexp.MustCompile(`[A-Z]`)
	lowerRegex    = regexp.MustCompile(`[a-z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

const dateLayout = "2006-01-02"

// ProfileForm is the raw account form shared by registration and the
// admin create page.
type ProfileForm struct {
	Name            string `form:"name"`
	Username        string `form:"username"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	DateOfBirth     string `form:"date_of_birth"`
	Gender          string `form:"gender"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

// Profile is a validated ProfileForm.
type Profile struct {
	Name        string
	Username    string
	Email       string
	Phone       string
	DateOfBirth time.Time
	Gender      userModel.Gender
	Password    string
}

// ValidateProfile checks presence, confirmation, email syntax, then the
// per-field formats, in that order.
func ValidateProfile(f ProfileForm, now time.Time) (Profile, *response.BusinessError) {
	f.Name = strings.TrimSpace(f.Name)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.TrimSpace(f.Phone)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))

	required := []struct{ value, label string }{
		{f.Name, "Name"},
		{f.Username, "Username"},
		{f.Email, "Email"},
		{f.DateOfBirth, "Date of birth"},
		{f.Gender, "Gender"},
		{f.Password, "Password"},
		{f.ConfirmPassword, "Password confirmation"},
	}
	for _, field := range required {
		if field.value == "" {
			return Profile{}, response.Invalid(field.label + " is required.")
		}
	}

	if f.Password != f.ConfirmPassword {
		return Profile{}, response.Invalid("Passwords do not match.")
	}
	if !ValidEmail(f.Email) {
		return Profile{}, response.Invalid("Email address is not valid.")
	}
	if len(f.Name) > 100 {
		return Profile{}, response.Invalid("Name must be at most 100 characters.")
	}
	if !usernameRegex.MatchString(f.Username) {
		return Profile{}, response.Invalid("Username must be 3-50 letters, digits or underscores.")
	}
	if err := ValidatePassword(f.Password); err != nil {
		return Profile{}, err
	}
	if f.Phone != "" && !phoneRegex.MatchString(f.Phone) {
		return Profile{}, response.Invalid("Phone number is not valid.")
	}

	dob, err := time.Parse(dateLayout, f.DateOfBirth)
	if err != nil {
		return Profile{}, response.Invalid("Date of birth must be YYYY-MM-DD.")
	}
	if !dob.Before(now) {
		return Profile{}, response.Invalid("Date of birth must be in the past.")
	}

	gender := userModel.Gender(f.Gender)
	if !gender.Valid() {
		return Profile{}, response.Invalid("Gender must be male, female or other.")
	}

	return Profile{
		Name:        f.Name,
		Username:    f.Username,
		Email:       f.Email,
		Phone:       f.Phone,
		DateOfBirth: dob,
		Gender:      gender,
		Password:    f.Password,
	}, nil
}

// ValidEmail accepts addr-spec only, no display names.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && emailRegex.MatchString(email)
}

// ValidatePassword enforces 6-100 characters with upper, lower and digit.
func ValidatePassword(password string) *response.BusinessError {
	if len(password) < 6 || len(password) > 100 {
		return response.Invalid("Password must be 6-100 characters.")
	}
	if !IsStrongPassword(password) {
		return response.Invalid("Password needs an uppercase letter, a lowercase letter and a digit.")
	}
	return nil
}

func IsStrongPassword(password string) bool {
	return upperRegex.MatchString(password) &&
		lowerRegex.MatchString(password) &&
		digitRegex.MatchString(password)
}
