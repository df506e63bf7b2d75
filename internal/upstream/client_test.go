package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, nil)
}

func TestClientForwardsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "nome_completo": "Ana Souza", "tipo_usuario": "responsavel"})
	})

	identity, err := client.Me(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, int64(7), identity.ID)
	assert.Equal(t, "Ana Souza", identity.FullName)
}

func TestClientMapsUpstreamStatuses(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"token expirado"}`, "UNAUTHORIZED", http.StatusUnauthorized, "token expirado"},
		{"forbidden", http.StatusForbidden, `{"detail":"sem permissao"}`, "FORBIDDEN", http.StatusForbidden, "sem permissao"},
		{"not found", http.StatusNotFound, `{"detail":"mensagem nao encontrada"}`, "NOT_FOUND", http.StatusNotFound, "mensagem nao encontrada"},
		{"conflict", http.StatusConflict, `{"detail":"ja existe"}`, "CONFLICT", http.StatusConflict, "ja existe"},
		{"validation", http.StatusUnprocessableEntity, `{"detail":"conteudo obrigatorio"}`, "VALIDATION_ERROR", http.StatusBadRequest, "conteudo obrigatorio"},
		{"server fault", http.StatusInternalServerError, `oops`, "UPSTREAM_UNAVAILABLE", http.StatusBadGateway, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Inbox(context.Background(), "tok")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.wantCode, appErr.Code)
			assert.Equal(t, tc.wantStatus, appErr.Status)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, appErr.Message)
			}
		})
	}
}

func TestClientLoginRejectedCredentials(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ana@exemplo.br", payload["email"])
		assert.NotEmpty(t, payload["senha"])
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"credenciais invalidas"}`))
	})

	_, err := client.Login(context.Background(), "ana@exemplo.br", "errada")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestClientLoginReturnsToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok-xyz","token_type":"bearer"}`))
	})

	token, err := client.Login(context.Background(), "ana@exemplo.br", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
}

func TestClientLoginMissingToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Login(context.Background(), "ana@exemplo.br", "segredo")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

type recordedCall struct {
	operation string
	status    int
	duration  time.Duration
}

type recordingObserver struct {
	calls []recordedCall
}

func (o *recordingObserver) ObserveUpstreamCall(operation string, status int, duration time.Duration) {
	o.calls = append(o.calls, recordedCall{operation, status, duration})
}

func TestClientReportsCallOutcomes(t *testing.T) {
	observer := &recordingObserver{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":31,"lida_em":"2026-03-10T10:00:00Z"}`))
	}))
	t.Cleanup(server.Close)
	client := New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, observer)

	_, err := client.MarkRead(context.Background(), "tok", 31)
	require.NoError(t, err)

	require.Len(t, observer.calls, 1)
	// Numeric path segments are collapsed so label cardinality stays bounded.
	assert.Equal(t, "POST /api/mensagens/:id/confirmar-leitura", observer.calls[0].operation)
	assert.Equal(t, http.StatusOK, observer.calls[0].status)
}

func TestClientReportsTransportFailureAsStatusZero(t *testing.T) {
	observer := &recordingObserver{}
	client := New(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, observer)

	_, err := client.Inbox(context.Background(), "tok")
	require.Error(t, err)

	require.Len(t, observer.calls, 1)
	assert.Equal(t, 0, observer.calls[0].status)
}

func TestClientUnreachableHost(t *testing.T) {
	client := New(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil)

	_, err := client.Inbox(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestClientSendPostsWirePayload(t *testing.T) {
	var got map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/mensagens", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":31,"remetente_id":7,"destinatario_id":42,"conteudo":"Olá","tipo_midia":"texto","enviada_em":"2026-03-10T09:00:00Z"}`))
	})

	created, err := client.Send(context.Background(), "tok", SendMessagePayload{
		RecipientID: 42,
		Subject:     "Dúvida",
		Body:        "Olá",
		MediaKind:   "texto",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(42), got["destinatario_id"])
	assert.Equal(t, "Olá", got["conteudo"])
	assert.Equal(t, "texto", got["tipo_midia"])
	assert.Equal(t, int64(31), created.ID)
	assert.False(t, created.SentAt.IsZero())
}

func TestClientMarkReadPath(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":31,"lida_em":"2026-03-10T10:00:00Z"}`))
	})

	updated, err := client.MarkRead(context.Background(), "tok", 31)
	require.NoError(t, err)
	assert.Equal(t, "/api/mensagens/31/confirmar-leitura", gotPath)
	require.NotNil(t, updated.ReadAt)
}
