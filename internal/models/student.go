package models

import "time"

// Student is an upstream student (aluno) record.
type Student struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"user_id"`
	Registration     string      `json:"matricula"`
	BirthDate        string      `json:"data_nascimento,omitempty"`
	SpecialNeeds     bool        `json:"necessidades_especiais"`
	NeedsDescription string      `json:"descricao_necessidades,omitempty"`
	PEIActive        bool        `json:"pei_ativo"`
	ClassID          *int64      `json:"turma_id,omitempty"`
	User             *PersonInfo `json:"user,omitempty"`
	Class            *ClassInfo  `json:"turma,omitempty"`
}

// ClassInfo is the embedded class detail on student records.
type ClassInfo struct {
	Name  string `json:"nome"`
	Grade string `json:"serie"`
}

// PEI is an individualized education plan for a student.
type PEI struct {
	ID                  int64             `json:"id"`
	StudentID           int64             `json:"aluno_id"`
	Objectives          string            `json:"objetivos"`
	CurricularAdaptions string            `json:"adaptacoes_curriculares,omitempty"`
	TeachingStrategies  string            `json:"estrategias_ensino,omitempty"`
	RequiredResources   string            `json:"recursos_necessarios,omitempty"`
	EvaluationCriteria  string            `json:"criterios_avaliacao,omitempty"`
	Notes               string            `json:"observacoes,omitempty"`
	Active              bool              `json:"ativo"`
	StartDate           string            `json:"data_inicio"`
	EndDate             string            `json:"data_fim,omitempty"`
	CreatedAt           time.Time         `json:"criado_em"`
	UpdatedAt           *time.Time        `json:"atualizado_em,omitempty"`
	Interventions       []PEIIntervention `json:"intervencoes,omitempty"`
}

// PEIIntervention is a pedagogical intervention logged against a PEI.
type PEIIntervention struct {
	ID              int64     `json:"id"`
	PEIID           int64     `json:"pei_id"`
	Date            string    `json:"data_intervencao"`
	Kind            string    `json:"tipo_intervencao,omitempty"`
	Description     string    `json:"descricao"`
	ObservedResults string    `json:"resultados_observados,omitempty"`
	NextSteps       string    `json:"proximos_passos,omitempty"`
	CreatedAt       time.Time `json:"criado_em"`
}
