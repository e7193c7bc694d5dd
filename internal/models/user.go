package models

// UserType distinguishes customers from tour operators.
type UserType int

const (
	UserTypeCustomer UserType = 1
	UserTypeCompany  UserType = 2
)

func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeCompany
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether r is a role the admin API may assign.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// UserModel is a registered account. UserID is the human-facing sequential id
// every other table references.
type UserModel struct {
	Base
	UserID         int64       `json:"userId"         gorm:"uniqueIndex;not null"`
	Account        string      `json:"account"        gorm:"size:191;uniqueIndex;not null"`
	Password       string      `json:"-"              gorm:"not null"`
	Authentication int         `json:"authentication" gorm:"not null;default:0"`
	UserName       string      `json:"userName"       gorm:"size:191;index"`
	Type           UserType    `json:"type"           gorm:"not null;default:1;index"`
	Role           string      `json:"role"           gorm:"size:16;not null;default:user"`
	Avatar         string      `json:"avatar"`
	Address        string      `json:"address"`
	City           string      `json:"city"`
	District       string      `json:"district"`
	Email          string      `json:"email"          gorm:"size:191;index"`
	Phone          string      `json:"phone"          gorm:"size:32;index"`
	CostRange      string      `json:"costRange"`
	ImageIntroduce StringArray `json:"imageIntroduce" gorm:"type:text"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsAdmin() bool { return u.Role == RoleAdmin }
