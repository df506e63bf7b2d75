package dto

// CreateSchoolRequest registers a new school.
type CreateSchoolRequest struct {
	Name    string `json:"nome" validate:"required"`
	Address string `json:"endereco,omitempty"`
	Phone   string `json:"telefone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateClassRequest registers a new class under a school.
type CreateClassRequest struct {
	Name       string `json:"nome" validate:"required"`
	Code       string `json:"codigo" validate:"required"`
	Grade      string `json:"serie" validate:"required"`
	Shift      string `json:"turno" validate:"required"`
	SchoolYear int    `json:"ano_letivo" validate:"required,gte=2000"`
	SchoolID   int64  `json:"escola_id,omitempty"`
	Room       string `json:"sala,omitempty"`
	Seats      int    `json:"vagas,omitempty"`
}

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	UserID           int64  `json:"user_id" validate:"required,gt=0"`
	Registration     string `json:"matricula" validate:"required"`
	BirthDate        string `json:"data_nascimento,omitempty"`
	SpecialNeeds     bool   `json:"necessidades_especiais,omitempty"`
	NeedsDescription string `json:"descricao_necessidades,omitempty"`
	PEIActive        bool   `json:"pei_ativo,omitempty"`
	GuardianID       int64  `json:"responsavel_id,omitempty"`
	ClassID          int64  `json:"turma_id,omitempty"`
}

// CreateEventRequest registers a calendar event.
type CreateEventRequest struct {
	Title                string `json:"titulo" validate:"required"`
	Description          string `json:"descricao" validate:"required"`
	Kind                 string `json:"tipo" validate:"required"`
	Date                 string `json:"data_evento" validate:"required"`
	StartTime            string `json:"hora_inicio,omitempty"`
	EndTime              string `json:"hora_fim,omitempty"`
	Location             string `json:"local,omitempty"`
	Audience             string `json:"publico_alvo,omitempty"`
	RequiresConfirmation int    `json:"requer_confirmacao,omitempty"`
}

// CreateActivityRequest registers an educational content entry.
type CreateActivityRequest struct {
	Title       string  `json:"titulo" validate:"required"`
	Description string  `json:"descricao" validate:"required"`
	Kind        string  `json:"tipo_atividade,omitempty"`
	SubjectID   int64   `json:"disciplina_id,omitempty"`
	ClassID     int64   `json:"turma_id,omitempty"`
	TeacherID   int64   `json:"professor_id,omitempty"`
	DueDate     string  `json:"data_entrega,omitempty"`
	MaxScore    float64 `json:"pontuacao_maxima,omitempty"`
}
