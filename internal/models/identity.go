package models

// Role represents the closed set of user roles on the upstream service.
// Wire values follow the upstream API.
type Role string

const (
	RoleTeacher  Role = "professor"
	RoleGuardian Role = "responsavel"
	RoleStudent  Role = "aluno"
	RoleAdmin    Role = "gestor"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleGuardian, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated principal as returned by the upstream
// "who am I" endpoint. The role is immutable for the lifetime of a session.
type Identity struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"nome_completo"`
	Role     Role   `json:"tipo_usuario"`
	Phone    string `json:"telefone,omitempty"`
	Active   bool   `json:"ativo"`
}
