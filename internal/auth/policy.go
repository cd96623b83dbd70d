package auth

import "github.com/rajatpathak/BidFlowAI-sub003/internal/models"

// Permission - имя права доступа.
type Permission string

const (
	ReadTenders   Permission = "tenders:read"
	WriteTenders  Permission = "tenders:write"
	DeleteTenders Permission = "tenders:delete"
	AssignTenders Permission = "tenders:assign"
	ReadUsers     Permission = "users:read"
)

var rolePermissions = map[models.Role][]Permission{
	models.AdminRole:          {ReadTenders, WriteTenders, DeleteTenders, AssignTenders, ReadUsers},
	models.FinanceManagerRole: {ReadTenders, WriteTenders},
	models.SeniorBidderRole:   {ReadTenders, WriteTenders, AssignTenders, ReadUsers},
	models.BidderRole:         {ReadTenders},
}

// KnownRole проверяет, что роль описана в политике.
func KnownRole(role models.Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission проверяет, входит ли право в набор прав роли.
func HasPermission(role models.Role, permission Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Authorize решает, можно ли пропустить запрос. Пустые requiredRole и
// requiredPermission не проверяются.
func Authorize(session *models.Session, requiredRole models.Role, requiredPermission Permission) error {
	if session == nil {
		return models.ErrUnauthenticated
	}
	if requiredRole != "" && session.Role != requiredRole {
		return models.ErrInsufficientRole
	}
	if requiredPermission != "" && !HasPermission(session.Role, requiredPermission) {
		return models.ErrInsufficientPermission
	}
	return nil
}
