package models

// Activity is an educational content entry (atividade).
type Activity struct {
	ID          int64   `json:"id"`
	Title       string  `json:"titulo"`
	Description string  `json:"descricao"`
	Kind        string  `json:"tipo_atividade,omitempty"`
	SubjectID   *int64  `json:"disciplina_id,omitempty"`
	ClassID     *int64  `json:"turma_id,omitempty"`
	TeacherID   *int64  `json:"professor_id,omitempty"`
	CreatedAt   string  `json:"data_criacao"`
	DueDate     string  `json:"data_entrega,omitempty"`
	MaxScore    float64 `json:"pontuacao_maxima,omitempty"`
}
