package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sahilsama/calmi/models"
	"github.com/sahilsama/calmi/routes"
	"github.com/sahilsama/calmi/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStore はテスト用のインメモリ実装。連鎖削除もここで再現する
type memoryStore struct {
	sessions map[string]*models.Session
	messages map[string][]models.Message
	counter  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]*models.Session),
		messages: make(map[string][]models.Message),
	}
}

func (s *memoryStore) CreateSession(session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *memoryStore) GetSession(id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return session, nil
}

func (s *memoryStore) SaveMessage(sessionID, role, content string) (*models.Message, error) {
	s.counter++
	msg := models.Message{
		ID:        fmt.Sprintf("msg-%d", s.counter),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return &msg, nil
}

func (s *memoryStore) SaveExchange(sessionID, userContent, assistantContent string) error {
	if _, err := s.SaveMessage(sessionID, models.RoleUser, userContent); err != nil {
		return err
	}
	_, err := s.SaveMessage(sessionID, models.RoleAssistant, assistantContent)
	return err
}

func (s *memoryStore) RecentMessages(sessionID string, limit int) ([]models.Message, error) {
	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		return msgs[len(msgs)-limit:], nil
	}
	return msgs, nil
}

func (s *memoryStore) ListMessages(sessionID string) ([]models.Message, error) {
	return s.messages[sessionID], nil
}

func (s *memoryStore) DeleteSession(id string) error {
	if _, ok := s.sessions[id]; !ok {
		return services.ErrSessionNotFound
	}
	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

func (s *memoryStore) DeleteSessionsBefore(cutoff time.Time) (int64, error) {
	var deleted int64
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryStore) totalMessages() int {
	total := 0
	for _, msgs := range s.messages {
		total += len(msgs)
	}
	return total
}

// stubGateway は固定の結果を返し、呼び出し内容を記録する
type stubGateway struct {
	result     services.GenerateResult
	calls      int
	lastSystem string
	lastNew    string
	lastJSON   bool
}

func (g *stubGateway) GenerateReply(systemPrompt string, history []models.Message, newMessage string, jsonMode bool) services.GenerateResult {
	g.calls++
	g.lastSystem = systemPrompt
	g.lastNew = newMessage
	g.lastJSON = jsonMode
	return g.result
}

func newTestRouter(store services.Store, gateway services.Gateway) *gin.Engine {
	return routes.SetupRouter(store, gateway)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func validSessionRequest() map[string]string {
	return map[string]string{
		"name":                "Luna",
		"identity":            "she/her",
		"age_range":           "18-24",
		"relationship_status": "single",
		"support_type":        "anxiety",
		"communication_type":  "gentle",
	}
}

func createTestSession(t *testing.T, store *memoryStore) *models.Session {
	t.Helper()

	systemPrompt, err := services.BuildTherapistPersona(map[string]string{
		"name":                "Luna",
		"identity":            "she/her",
		"age_range":           "18-24",
		"relationship_status": "single",
		"support_type":        "anxiety",
	})
	if err != nil {
		t.Fatalf("failed to build persona: %v", err)
	}

	session := &models.Session{
		ID:           "session-1",
		Name:         "Luna",
		SystemPrompt: systemPrompt,
	}
	if err := store.CreateSession(session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}
