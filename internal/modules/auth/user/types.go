package user

import (
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
)

type LoginDTO struct {
	Account  string `json:"account"  form:"account"`
	Password string `json:"password" form:"password"`
}

type RegisterDTO struct {
	Account  string          `json:"account"  form:"account"`
	Password string          `json:"password" form:"password"`
	Type     models.UserType `json:"type"     form:"type"`
}

type UpdateUserDTO struct {
	UserName *string `json:"userName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type ChangePasswordDTO struct {
	PasswordOld     string `json:"passwordOld"`
	PasswordNew     string `json:"passwordNew"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// CompanyDTO is the form half of the company profile update; images travel
// as multipart files.
type CompanyDTO struct {
	UserName  string `form:"userName"`
	Address   string `form:"address"`
	City      string `form:"city"`
	District  string `form:"district"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	CostRange string `form:"costRange"`
}

const maxCompanyImages = 5

var (
	errMissingData      = apperr.New(apperr.InvalidArgument, "Missing data")
	errInvalidAccount   = apperr.New(apperr.InvalidArgument, "Account must be a phone number or an email address")
	errInvalidType      = apperr.New(apperr.InvalidArgument, "Invalid account type")
	errAccountExists    = apperr.New(apperr.Conflict, "Account already exists")
	errUserNotFound     = apperr.New(apperr.NotFound, "User not found")
	errWrongPassword    = apperr.New(apperr.Forbidden, "Wrong password")
	errWrongOldPassword = apperr.New(apperr.Forbidden, "Old password is incorrect")
	errConfirmMismatch  = apperr.New(apperr.InvalidArgument, "Password confirmation does not match")
	errTooManyImages    = apperr.New(apperr.InvalidArgument, "At most 5 images are allowed")
)
