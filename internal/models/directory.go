package models

import "time"

// School is an upstream school record.
type School struct {
	ID        int64      `json:"id"`
	Name      string     `json:"nome"`
	Address   string     `json:"endereco,omitempty"`
	Phone     string     `json:"telefone,omitempty"`
	Email     string     `json:"email,omitempty"`
	CreatedAt time.Time  `json:"criado_em"`
	UpdatedAt *time.Time `json:"atualizado_em,omitempty"`
}

// Class is an upstream class (turma) record.
type Class struct {
	ID         int64     `json:"id"`
	Name       string    `json:"nome"`
	Code       string    `json:"codigo"`
	Grade      string    `json:"serie"`
	Shift      string    `json:"turno"`
	SchoolYear int       `json:"ano_letivo"`
	SchoolID   int64     `json:"escola_id,omitempty"`
	Room       string    `json:"sala,omitempty"`
	Seats      int       `json:"vagas,omitempty"`
	CreatedAt  time.Time `json:"criado_em"`
}

// Contact is a messageable identity associated with a class: its teachers
// and the guardians of its students.
type Contact struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"nome_completo"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"tipo_usuario"`
}

// Teacher is an upstream teacher roster record.
type Teacher struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	Registration   string      `json:"matricula"`
	Education      string      `json:"formacao,omitempty"`
	Specialization string      `json:"especializacao,omitempty"`
	User           *PersonInfo `json:"user,omitempty"`
}

// Guardian is an upstream guardian (responsavel) record.
type Guardian struct {
	ID     int64       `json:"id"`
	UserID int64       `json:"user_id"`
	User   *PersonInfo `json:"user,omitempty"`
}

// PersonInfo is the embedded user detail on roster records.
type PersonInfo struct {
	FullName string `json:"nome_completo"`
	Email    string `json:"email"`
}
