package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/thread"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/upstream"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
)

// schoolServiceStub fakes the remote school REST API behind the gateway.
type schoolServiceStub struct {
	mu       sync.Mutex
	messages []models.Message
	nextID   int64
}

func (s *schoolServiceStub) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	requireToken := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer tok-int" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token invalido"})
			return false
		}
		return true
	}

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["email"] != "ana@exemplo.br" || payload["senha"] != "segredo" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "credenciais invalidas"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-int"})
	})
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "nome_completo": "Ana Souza", "email": "ana@exemplo.br",
			"tipo_usuario": "responsavel", "ativo": true,
		})
	})
	mux.HandleFunc("/api/escolas/1/turmas", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 10, "nome": "3A", "escola_id": 1}})
	})
	mux.HandleFunc("/api/turmas/10/professores", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "user_id": 42, "user": map[string]any{"nome_completo": "Carlos Lima", "email": "carlos@escola.br"}},
		})
	})
	mux.HandleFunc("/api/turmas/10/responsaveis", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{})
	})
	mux.HandleFunc("/api/mensagens", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		if r.Method == http.MethodPost {
			var payload upstream.SendMessagePayload
			_ = json.NewDecoder(r.Body).Decode(&payload)
			writeJSON(w, http.StatusCreated, s.store(7, payload))
			return
		}
		writeJSON(w, http.StatusOK, s.inboxFor(7))
	})
	mux.HandleFunc("/api/mensagens/enviadas", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, s.sentBy(7))
	})
	return mux
}

func (s *schoolServiceStub) store(senderID int64, payload upstream.SendMessagePayload) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := models.Message{
		ID:          s.nextID,
		SenderID:    senderID,
		RecipientID: payload.RecipientID,
		Subject:     payload.Subject,
		Body:        payload.Body,
		MediaKind:   payload.MediaKind,
		SentAt:      time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *schoolServiceStub) inboxFor(userID int64) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.RecipientID == userID {
			out = append(out, m)
		}
	}
	return out
}

func (s *schoolServiceStub) sentBy(userID int64) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.SenderID == userID {
			out = append(out, m)
		}
	}
	return out
}

func buildGatewayRouter(t *testing.T) *gin.Engine {
	t.Helper()
	stub := &schoolServiceStub{}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	client := upstream.New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, nil)
	store := session.NewMemoryCredentialStore()
	sessions := session.NewManager(store, client, nil, nil)
	threads := thread.NewRegistry(client, client, nil, nil)
	codec := session.NewCookieCodec(config.SessionConfig{
		CookieName:   "kazumi_session",
		CookieSecret: "integration-secret",
		TTL:          time.Hour,
	})

	authHandler := NewAuthHandler(sessions, threads, client, nil)
	threadHandler := NewThreadHandler(threads, time.Second, nil, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Session(codec, sessions))
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)

		threadsGroup := api.Group("/threads", middleware.Gate())
		threadsGroup.GET("", threadHandler.Thread)
		threadsGroup.POST("/refresh", threadHandler.Refresh)
		threadsGroup.GET("/selection", threadHandler.Selection)
		threadsGroup.POST("/selection/school", threadHandler.SelectSchool)
		threadsGroup.POST("/selection/class", threadHandler.SelectClass)
		threadsGroup.POST("/selection/contact", threadHandler.SelectContact)
		threadsGroup.POST("/messages", threadHandler.Send)
	}
	return r
}

// gatewaySession carries the session cookie across requests like a browser.
type gatewaySession struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func (gs *gatewaySession) do(method, path, body string) *httptest.ResponseRecorder {
	gs.t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if gs.cookie != nil {
		req.AddCookie(gs.cookie)
	}
	w := httptest.NewRecorder()
	gs.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "kazumi_session" {
			gs.cookie = c
		}
	}
	return w
}

func TestGatewayConversationFlow(t *testing.T) {
	router := buildGatewayRouter(t)
	gs := &gatewaySession{t: t, router: router}

	t.Run("anonymous session", func(t *testing.T) {
		resp := gs.do(http.MethodGet, "/api/v1/auth/session", "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"authenticated":false`)
	})

	t.Run("thread gated while anonymous", func(t *testing.T) {
		resp := gs.do(http.MethodGet, "/api/v1/threads", "")
		require.Equal(t, http.StatusFound, resp.Code)
		require.True(t, strings.HasPrefix(resp.Header().Get("Location"), "/auth/login?from="))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ana@exemplo.br","senha":"errada"}`)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("login", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ana@exemplo.br","senha":"segredo"}`)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"Ana Souza"`)
		require.Contains(t, resp.Body.String(), `"authenticated":true`)
	})

	t.Run("select school", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/threads/selection/school", `{"escola_id":1}`)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"3A"`)
	})

	t.Run("select class lists teacher contact", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/threads/selection/class", `{"turma_id":10}`)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"Carlos Lima"`)
	})

	t.Run("select contact yields empty thread", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/threads/selection/contact", `{"contato_id":42}`)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("send message appears in thread", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/threads/messages", `{"conteudo":"Olá, professor!"}`)
		require.Equal(t, http.StatusCreated, resp.Code)

		resp = gs.do(http.MethodGet, "/api/v1/threads", "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Olá, professor!")
		require.Contains(t, resp.Body.String(), `"outbound":true`)
	})

	t.Run("empty message rejected", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/threads/messages", `{"conteudo":"   "}`)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("logout clears state", func(t *testing.T) {
		resp := gs.do(http.MethodPost, "/api/v1/auth/logout", "")
		require.Equal(t, http.StatusNoContent, resp.Code)

		resp = gs.do(http.MethodGet, "/api/v1/auth/session", "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"authenticated":false`)
	})
}
