package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVRenderTranscriptColumns(t *testing.T) {
	entries := []TranscriptEntry{
		{Sender: "Carlos Lima", SentAt: "2026-03-10T09:00:00Z", Subject: "Aviso", Body: "Reunião amanhã"},
		{Sender: "Ana Souza", SentAt: "2026-03-10T09:01:00Z", Body: "Confirmado, \"ok\"", Outbound: true},
	}

	raw, err := NewCSVExporter().RenderTranscript(entries)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Enviada em", "Remetente", "Assunto", "Conteudo"}, records[0])
	assert.Equal(t, []string{"2026-03-10T09:00:00Z", "Carlos Lima", "Aviso", "Reunião amanhã"}, records[1])
	assert.Equal(t, []string{"2026-03-10T09:01:00Z", "Ana Souza", "", "Confirmado, \"ok\""}, records[2])
}
