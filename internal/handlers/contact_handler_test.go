package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tesseract-integrations/tesseract-api/internal/handlers"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "development",
	})
}

// MockContactService implements services.ContactSubmitter for testing
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(req models.ContactFormRequest, callerIP string) (*models.ContactFormResponse, error) {
	args := m.Called(req, callerIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactFormResponse), args.Error(1)
}

func newContactRouter(service *MockContactService) *gin.Engine {
	handler := handlers.NewContactHandler(service)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})
	router.POST("/api/v1/contact", handler.SubmitContactForm)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestContactHandler_Success(t *testing.T) {
	mockService := new(MockContactService)
	router := newContactRouter(mockService)

	reqBody := models.ContactFormRequest{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Company: "Analytical Engines",
		Message: "We would like help automating our reporting.",
	}
	mockService.On("Submit", reqBody, mock.Anything).Return(&models.ContactFormResponse{
		Success:   true,
		Message:   "Thank you for your message! We'll get back to you within 24 hours.",
		Timestamp: "2026-08-29T12:00:00Z",
	}, nil).Once()

	w := postJSON(router, "/api/v1/contact", reqBody)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ContactFormResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Timestamp)
	mockService.AssertExpectations(t)
}

func TestContactHandler_ValidationFailureListsFields(t *testing.T) {
	mockService := new(MockContactService)
	router := newContactRouter(mockService)

	// Message below the 10-character minimum, email malformed
	w := postJSON(router, "/api/v1/contact", map[string]string{
		"name":    "Ada",
		"email":   "not-an-email",
		"company": "Analytical Engines",
		"message": "too short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Error   string                     `json:"error"`
		Details []handlers.ValidationError `json:"details"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Error)

	fields := make(map[string]string)
	for _, d := range resp.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Message")

	mockService.AssertNotCalled(t, "Submit")
}

func TestContactHandler_RateLimitedReturns429(t *testing.T) {
	mockService := new(MockContactService)
	router := newContactRouter(mockService)

	mockService.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.ErrRateLimited).Once()

	w := postJSON(router, "/api/v1/contact", models.ContactFormRequest{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Company: "Analytical Engines",
		Message: "We would like help automating our reporting.",
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	mockService.AssertExpectations(t)
}

func TestContactHandler_NonPostMethodsAre405(t *testing.T) {
	mockService := new(MockContactService)
	router := newContactRouter(mockService)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/v1/contact", http.NoBody)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "method %s", method)
		assert.Contains(t, w.Body.String(), "Method not allowed")
	}
}
