package util

import (
	"slices"

	"github.com/SeakMengs/AutoTermo/internal/constant"
)

func HasRole(role constant.UserRole, allowed ...constant.UserRole) bool {
	return slices.Contains(allowed, role)
}
