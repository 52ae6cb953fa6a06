package enums

import "strings"

type Role string

const (
	RoleUser     Role = "USER"
	RoleLandlord Role = "LANDLORD"
	RoleAdmin    Role = "ADMIN"
)

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if role.Valid() {
		return role, true
	}
	return "", false
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}
