package validation

import (
	"fmt"
	"net/mail"
	"regexp"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/model"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

// ValidateLogin checks that both credentials are present.
func ValidateLogin(req request.LoginRequest) error {
	errs := make(map[string]string)
	checkRequired(errs, "username", req.Username)
	if req.Password == "" {
		errs["password"] = "password is required"
	}
	return result(errs)
}

// ValidateCreateUser validates a user creation request.
//
// Required fields:
//   - username: 3-50 characters of letters, digits, '.', '_' or '-'
//   - password: 8-72 bytes
//
// role defaults to MANAGER when empty.
func ValidateCreateUser(req request.CreateUserRequest) error {
	errs := make(map[string]string)

	if checkRequired(errs, "username", req.Username) && !usernamePattern.MatchString(req.Username) {
		errs["username"] = "username must be 3-50 characters of letters, digits, '.', '_' or '-'"
	}
	checkEmail(errs, req.Email)
	checkLength(errs, "firstName", req.FirstName, MaxNameLength)
	checkLength(errs, "lastName", req.LastName, MaxNameLength)
	if req.Role != "" {
		checkRole(errs, req.Role)
	}
	checkPassword(errs, req.Password)

	return result(errs)
}

// ValidateUpdateUser validates a user update request. Passwords are changed
// through ValidateSetPassword.
func ValidateUpdateUser(req request.UpdateUserRequest) error {
	errs := make(map[string]string)

	if req.Email != nil {
		checkEmail(errs, *req.Email)
	}
	if req.FirstName != nil {
		checkLength(errs, "firstName", *req.FirstName, MaxNameLength)
	}
	if req.LastName != nil {
		checkLength(errs, "lastName", *req.LastName, MaxNameLength)
	}
	if req.Role != nil {
		checkRole(errs, *req.Role)
	}

	return result(errs)
}

func ValidateSetPassword(req request.SetPasswordRequest) error {
	errs := make(map[string]string)
	checkPassword(errs, req.Password)
	return result(errs)
}

func checkEmail(errs map[string]string, email string) {
	if email == "" {
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "email must be a valid address"
	}
}

func checkRole(errs map[string]string, role string) {
	if !model.Role(role).Valid() {
		errs["role"] = fmt.Sprintf("invalid role: %s", role)
	}
}

func checkPassword(errs map[string]string, password string) {
	switch {
	case password == "":
		errs["password"] = "password is required"
	case len(password) < minPasswordLength:
		errs["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	case len(password) > maxPasswordLength:
		errs["password"] = fmt.Sprintf("password must be at most %d bytes", maxPasswordLength)
	}
}
