package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
)

type testInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type bindInput struct {
	Name  string  `json:"name" form:"product_name" binding:"required,min=3"`
	Email string  `json:"email" binding:"required,email"`
	Price float64 `json:"price" binding:"gte=0"`
}

type publicErr struct{ msg string }

func (e publicErr) Error() string         { return "wrapped: " + e.msg }
func (e publicErr) PublicMessage() string { return e.msg }

func newResponseTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func newResponseTestContextWithBody(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := newResponseTestContext()
	Success(c, map[string]string{"name": "Serum"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Message != "success" || resp.Code != http.StatusOK {
		t.Errorf("got %+v", resp)
	}
	if data, ok := resp.Data.(map[string]any); !ok || data["name"] != "Serum" {
		t.Errorf("Data = %v", resp.Data)
	}
}

func TestError(t *testing.T) {
	transport := &api.Error{Method: "GET", Path: "/products", Transport: true, Err: context.DeadlineExceeded}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"app not found", domain.NewAppError(domain.CodeNotFound, "product not found", nil), http.StatusNotFound, "product not found"},
		{"app conflict", domain.NewAppError(domain.CodeAlreadyExists, "voucher exists", nil), http.StatusConflict, "voucher exists"},
		{"app unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"generic", errors.New("something broke"), http.StatusInternalServerError, "internal error"},
		{"backend 404", &api.Error{Status: 404, Message: api.MessageNotFound}, http.StatusNotFound, api.MessageNotFound},
		{"backend 409 wrapped", fmt.Errorf("create: %w", &api.Error{Status: 409, Message: "Code already used"}), http.StatusConflict, "Code already used"},
		{"backend 418 no message", &api.Error{Status: 418}, 418, "backend request failed"},
		{"transport", transport, http.StatusBadGateway, "backend request failed"},
		{"public message wins", fmt.Errorf("x: %w", publicErr{msg: "Failed to fetch orders"}), http.StatusInternalServerError, "Failed to fetch orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext()
			Error(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			resp := decodeResponse(t, w)
			if resp.Code != tt.wantStatus {
				t.Errorf("code = %d; want %d", resp.Code, tt.wantStatus)
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q; want %q", resp.Message, tt.wantMsg)
			}
			if resp.Data != nil {
				t.Errorf("data = %v; want nil", resp.Data)
			}
		})
	}
}

func TestList(t *testing.T) {
	c, w := newResponseTestContext()
	page := NewPage([]string{"a", "b"}, 2, domain.PageRequest{Page: 1, PageSize: 20})
	List(c, page)

	resp := decodeResponse(t, w)
	raw, _ := json.Marshal(resp.Data)
	var got domain.Page[string]
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if len(got.Items) != 2 || got.TotalCount != 2 || got.TotalPages != 1 {
		t.Errorf("page = %+v", got)
	}
}

func TestValidationError_WithValidatorErrors(t *testing.T) {
	c, w := newResponseTestContext()

	err := validator.New().Struct(testInput{})
	ValidationError(c, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "validation error" {
		t.Errorf("message = %q", resp.Message)
	}
	for _, field := range []string{"name", "email"} {
		if resp.Errors[field] != "This field is required" {
			t.Errorf("Errors[%s] = %q", field, resp.Errors[field])
		}
	}
}

func TestValidationError_NonValidationError(t *testing.T) {
	c, w := newResponseTestContext()
	ValidationError(c, errors.New("bad json"))

	resp := decodeResponse(t, w)
	if w.Code != http.StatusBadRequest || resp.Message != "bad request" {
		t.Errorf("status = %d, message = %q", w.Code, resp.Message)
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantErrors map[string]string
	}{
		{
			name:   "valid",
			body:   `{"name":"Serum","email":"ops@example.com","price":12.5}`,
			wantOK: true,
		},
		{
			name:   "missing fields use form tag then json tag",
			body:   `{}`,
			wantOK: false,
			wantErrors: map[string]string{
				"product_name": "This field is required",
				"email":        "This field is required",
			},
		},
		{
			name:       "invalid email",
			body:       `{"name":"Serum","email":"nope"}`,
			wantOK:     false,
			wantErrors: map[string]string{"email": "Must be a valid email address"},
		},
		{
			name:       "string min",
			body:       `{"name":"Se","email":"ops@example.com"}`,
			wantOK:     false,
			wantErrors: map[string]string{"product_name": "Must be at least 3 characters"},
		},
		{
			name:       "numeric gte",
			body:       `{"name":"Serum","email":"ops@example.com","price":-1}`,
			wantOK:     false,
			wantErrors: map[string]string{"price": "Must be greater than or equal to 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContextWithBody(tt.body)
			var in bindInput
			if got := BindAndValidate(c, &in); got != tt.wantOK {
				t.Fatalf("BindAndValidate() = %v; want %v", got, tt.wantOK)
			}
			if tt.wantOK {
				if w.Body.Len() != 0 {
					t.Errorf("body written on success: %q", w.Body.String())
				}
				return
			}

			var resp ValidationErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(resp.Errors) != len(tt.wantErrors) {
				t.Errorf("Errors = %v; want %v", resp.Errors, tt.wantErrors)
			}
			for field, msg := range tt.wantErrors {
				if resp.Errors[field] != msg {
					t.Errorf("Errors[%s] = %q; want %q", field, resp.Errors[field], msg)
				}
			}
		})
	}
}

func TestBindAndValidate_InvalidJSON(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"invalid json`)
	var in bindInput
	if BindAndValidate(c, &in) {
		t.Fatal("expected false for malformed JSON")
	}
	if resp := decodeResponse(t, w); resp.Message != "bad request" {
		t.Errorf("message = %q; want bad request", resp.Message)
	}
}

func TestFieldErrors_NotValidation(t *testing.T) {
	if _, ok := FieldErrors(errors.New("x"), nil); ok {
		t.Error("FieldErrors() should report false for plain errors")
	}
}
