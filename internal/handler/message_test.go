package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeMessageRepo struct {
	saved      []*models.Message
	saveErr    error
	listResult []*models.Message
	listErr    error
	lastFilter repository.MessageFilter
}

func (f *fakeMessageRepo) SaveMessage(msg *models.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if msg.ID == "" {
		msg.ID = "00000000-0000-0000-0000-000000000001"
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessageRepo) ListMessages(filter repository.MessageFilter) ([]*models.Message, error) {
	f.lastFilter = filter
	return f.listResult, f.listErr
}

func (f *fakeMessageRepo) CountMessages() (int, error)               { return len(f.saved), nil }
func (f *fakeMessageRepo) CountFlagged() (int, error)                { return 0, nil }
func (f *fakeMessageRepo) CountSince(time.Time) (int, error)         { return 0, nil }
func (f *fakeMessageRepo) CountFailed() (int, error)                 { return 0, nil }
func (f *fakeMessageRepo) CountByBot() (map[string]int, error)       { return nil, nil }
func (f *fakeMessageRepo) CountByDirection() (map[string]int, error) { return nil, nil }
func (f *fakeMessageRepo) RecentFlagged(int) ([]*models.Message, error) {
	return nil, nil
}

func newMessageTestRouter(repo repository.MessageRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidatorTagNames()

	h := NewMessageHandler(repo, nil, zap.NewNop())
	router := gin.New()
	router.POST("/api/messages", h.CreateMessage)
	router.GET("/api/messages", h.ListMessages)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateMessageFlagsErrorText(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":       "oliver",
		"botName":     "Oliver",
		"direction":   "outbound",
		"status":      "sent",
		"messageText": "Connection refused by host",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}

	var got models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !got.Flagged {
		t.Fatal("expected message to be flagged")
	}
	if got.FlagReason == nil || *got.FlagReason != "Contains error-like text" {
		t.Fatalf("flagReason = %v, want 'Contains error-like text'", got.FlagReason)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d messages, want 1", len(repo.saved))
	}
	if repo.saved[0].Flagged != got.Flagged {
		t.Fatal("persisted flag differs from response flag")
	}
}

func TestCreateMessageUUIDTakesPrecedence(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":       "oliver",
		"botName":     "Oliver",
		"direction":   "outbound",
		"status":      "sent",
		"messageText": "error occurred for session 123e4567-e89b-12d3-a456-426614174000",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var got models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got.FlagReason == nil || *got.FlagReason != "Contains UUID patterns" {
		t.Fatalf("flagReason = %v, want 'Contains UUID patterns'", got.FlagReason)
	}
}

func TestCreateMessageOverridesClientFlag(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":       "max",
		"botName":     "Max",
		"direction":   "inbound",
		"status":      "received",
		"messageText": "thanks for the quick reply",
		"flagged":     true,
		"flagReason":  "client says so",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var got models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got.Flagged {
		t.Fatal("heuristic result must override the client-supplied flag")
	}
	if got.FlagReason != nil {
		t.Fatalf("flagReason = %q, want absent", *got.FlagReason)
	}
}

func TestCreateMessageValidationListsAllViolations(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	// Missing botId, botName and status; direction has a bad value.
	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"direction": "sideways",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	fields := make(map[string]bool)
	for _, d := range resp.Details {
		fields[d.Field] = true
	}
	for _, want := range []string{"botId", "botName", "direction", "status"} {
		if !fields[want] {
			t.Fatalf("details missing field %q: %+v", want, resp.Details)
		}
	}
	if len(repo.saved) != 0 {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestCreateMessageMissingStatus(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":     "oliver",
		"botName":   "Oliver",
		"direction": "outbound",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("status")) {
		t.Fatalf("response does not mention the status field: %s", w.Body.String())
	}
}

func TestCreateMessageRejectsNonIntegerTokenCount(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":      "oliver",
		"botName":    "Oliver",
		"direction":  "outbound",
		"status":     "sent",
		"tokenCount": 12.5,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("tokenCount")) {
		t.Fatalf("response does not mention tokenCount: %s", w.Body.String())
	}
}

func TestCreateMessageStoreFailure(t *testing.T) {
	repo := &fakeMessageRepo{saveErr: errors.New("connection reset")}
	router := newMessageTestRouter(repo)

	w := postJSON(t, router, "/api/messages", map[string]interface{}{
		"botId":     "oliver",
		"botName":   "Oliver",
		"direction": "outbound",
		"status":    "sent",
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("connection reset")) {
		t.Fatal("internal error details must not leak to the caller")
	}
}

func TestListMessagesPassesFiltersAndPagination(t *testing.T) {
	text := "hello"
	repo := &fakeMessageRepo{listResult: []*models.Message{
		{ID: "a", BotID: "oliver", Direction: "outbound", Status: "sent", MessageText: &text},
		{ID: "b", BotID: "oliver", Direction: "outbound", Status: "sent"},
	}}
	router := newMessageTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/messages?botId=oliver&direction=outbound&limit=2&flagged=true&isGroup=false&search=claim", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if repo.lastFilter.BotID != "oliver" || repo.lastFilter.Direction != "outbound" {
		t.Fatalf("filter not forwarded: %+v", repo.lastFilter)
	}
	if !repo.lastFilter.FlaggedOnly {
		t.Fatal("flagged=true not forwarded")
	}
	if repo.lastFilter.IsGroup == nil || *repo.lastFilter.IsGroup {
		t.Fatalf("isGroup=false not forwarded: %+v", repo.lastFilter.IsGroup)
	}
	if repo.lastFilter.Search != "claim" {
		t.Fatalf("search = %q, want claim", repo.lastFilter.Search)
	}
	if repo.lastFilter.Limit != 2 {
		t.Fatalf("limit = %d, want 2", repo.lastFilter.Limit)
	}

	var resp struct {
		Messages   []models.Message `json:"messages"`
		Pagination struct {
			Limit   int  `json:"limit"`
			Offset  int  `json:"offset"`
			HasMore bool `json:"hasMore"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("returned %d messages, want 2", len(resp.Messages))
	}
	if !resp.Pagination.HasMore {
		t.Fatal("hasMore should be true when the page is exactly full")
	}
	if resp.Pagination.Limit != 2 || resp.Pagination.Offset != 0 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
}

func TestListMessagesCoercesMalformedParams(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/messages?limit=abc&offset=-5&startDate=garbage&isGroup=maybe&flagged=yes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if repo.lastFilter.Limit != repository.DefaultLimit {
		t.Fatalf("limit = %d, want default %d", repo.lastFilter.Limit, repository.DefaultLimit)
	}
	if repo.lastFilter.Offset != 0 {
		t.Fatalf("offset = %d, want 0", repo.lastFilter.Offset)
	}
	if repo.lastFilter.StartDate != nil {
		t.Fatal("malformed startDate must be ignored")
	}
	if repo.lastFilter.IsGroup != nil {
		t.Fatal("isGroup=maybe must be ignored")
	}
	if repo.lastFilter.FlaggedOnly {
		t.Fatal("flagged filter only applies for the literal value true")
	}

	var resp struct {
		Messages   []json.RawMessage `json:"messages"`
		Pagination struct {
			HasMore bool `json:"hasMore"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Messages == nil {
		t.Fatal("messages must be an empty array, not null")
	}
	if resp.Pagination.HasMore {
		t.Fatal("hasMore must be false for an empty page")
	}
}

func TestListMessagesCapsLimit(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/messages?limit=5000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if repo.lastFilter.Limit != repository.MaxLimit {
		t.Fatalf("limit = %d, want cap %d", repo.lastFilter.Limit, repository.MaxLimit)
	}
}

func TestListMessagesDateParsing(t *testing.T) {
	repo := &fakeMessageRepo{}
	router := newMessageTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/messages?startDate=2026-08-01&endDate=2026-08-28T15:04:05Z", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if repo.lastFilter.StartDate == nil {
		t.Fatal("startDate not parsed")
	}
	if got := *repo.lastFilter.StartDate; got != time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("startDate = %v", got)
	}
	if repo.lastFilter.EndDate == nil {
		t.Fatal("endDate not parsed")
	}
}
