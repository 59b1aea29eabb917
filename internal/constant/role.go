package constant

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleProfessor UserRole = "professor"
	UserRoleStudent   UserRole = "student"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleProfessor, UserRoleStudent:
		return true
	}
	return false
}
