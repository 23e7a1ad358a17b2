package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"manual-assistant-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	lastReq *dto.ChatQueryRequest
}

func (s *stubChatService) HandleQuery(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	s.lastReq = req
	return &dto.ChatQueryResponse{SessionId: "sess-1", Text: "respuesta"}, nil
}

func newTestApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func postQuery(t *testing.T, app *fiber.App, body string) *http.Response {
	req := httptest.NewRequest("POST", "/api/chat/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	return res
}

func TestQueryValidatesRequestBody(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"empty payload rejected", `{}`, fiber.StatusBadRequest},
		{"text query accepted", `{"query":"cómo anulo una factura"}`, fiber.StatusOK},
		{"image-only query accepted", `{"image_ref":"img-123"}`, fiber.StatusOK},
		{"malformed json rejected", `{"query":`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{}
			res := postQuery(t, newTestApp(svc), tt.body)
			assert.Equal(t, tt.expectedStatus, res.StatusCode)
		})
	}
}

func TestQueryForwardsRequestToService(t *testing.T) {
	svc := &stubChatService{}
	res := postQuery(t, newTestApp(svc), `{"session_id":"sess-1","query":"hola"}`)

	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "sess-1", svc.lastReq.SessionId)
	assert.Equal(t, "hola", svc.lastReq.Query)
}
