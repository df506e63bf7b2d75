package models

// EngagementReport summarises platform usage over a period.
type EngagementReport struct {
	PeriodDays     int     `json:"periodo_dias"`
	ActiveUsers    int     `json:"usuarios_ativos"`
	TotalUsers     int     `json:"total_usuarios"`
	ActivationRate float64 `json:"taxa_ativacao"`
	TotalActions   int     `json:"total_acoes"`
	MessagesSent   int     `json:"mensagens_enviadas"`
	EventsCreated  int     `json:"eventos_criados"`
}

// PerformanceReport summarises a class's academic indicators.
type PerformanceReport struct {
	ClassID            int64   `json:"turma_id"`
	ClassName          string  `json:"turma_nome"`
	TotalStudents      int     `json:"total_alunos"`
	StudentsWithPEI    int     `json:"alunos_com_pei"`
	SubmissionRate     float64 `json:"taxa_entrega_atividades"`
	AverageGrade       float64 `json:"media_geral"`
	AverageAttendance  float64 `json:"frequencia_media"`
}

// PEIReport aggregates PEI tracking figures.
type PEIReport struct {
	TotalStudents   int               `json:"total_alunos_pei"`
	ByGrade         []PEIGradeCount   `json:"alunos_por_serie"`
	NeedsBreakdown  []PEINeedsCount   `json:"tipos_necessidades"`
	AverageProgress float64           `json:"progresso_medio"`
}

// PEIGradeCount counts PEI students per grade.
type PEIGradeCount struct {
	Grade string `json:"serie"`
	Count int    `json:"quantidade"`
}

// PEINeedsCount counts students per special-needs category.
type PEINeedsCount struct {
	Kind  string `json:"tipo"`
	Count int    `json:"quantidade"`
}
