package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"name": "Unit 101"})

	if !resp.Success {
		t.Error("Expected success to be true")
	}
	if resp.Data == nil {
		t.Error("Expected data to be set")
	}
	if resp.Error != nil {
		t.Error("Expected error to be nil")
	}
	if resp.Meta != nil {
		t.Error("Expected meta to be nil")
	}
}

func TestSuccess_JSONFormat(t *testing.T) {
	jsonBytes, err := json.Marshal(Success(map[string]string{"id": "123"}))
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["success"] != true {
		t.Errorf("Expected success=true, got %v", parsed["success"])
	}
	if _, ok := parsed["error"]; ok {
		t.Error("Expected error field to be omitted")
	}
	if _, ok := parsed["meta"]; ok {
		t.Error("Expected meta field to be omitted")
	}
}

func TestList(t *testing.T) {
	resp := ListInRange([]int{1, 2, 3}, 3, "2025-01-01", "2025-03-31")

	if resp.Meta == nil {
		t.Fatal("Expected meta to be set")
	}
	if resp.Meta.Count != 3 {
		t.Errorf("Expected count 3, got %d", resp.Meta.Count)
	}
	if resp.Meta.From != "2025-01-01" || resp.Meta.To != "2025-03-31" {
		t.Errorf("Unexpected range %s..%s", resp.Meta.From, resp.Meta.To)
	}
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeNotFound, "Payment not found")

	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Data != nil {
		t.Error("Expected data to be nil")
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected code %s, got %s", ErrCodeNotFound, resp.Error.Code)
	}
	if resp.Error.Message != "Payment not found" {
		t.Errorf("Unexpected message %q", resp.Error.Message)
	}
}

func TestValidationFailed(t *testing.T) {
	resp := ValidationFailed(map[string]string{"due_date": "invalid date"})

	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeValidationFailed, resp.Error.Code)
	}
	if resp.Error.Details["due_date"] != "invalid date" {
		t.Error("Expected due_date detail")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidOperation, http.StatusBadRequest},
		{ErrCodeRequestCancelled, http.StatusServiceUnavailable},
		{ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("GetHTTPStatus(%s) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestCommonErrorResponses_DefaultMessages(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		code string
	}{
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized},
		{"forbidden", Forbidden(""), ErrCodeForbidden},
		{"not found", NotFound(""), ErrCodeNotFound},
		{"internal", InternalError(""), ErrCodeInternalError},
		{"too many", TooManyRequests(""), ErrCodeTooManyRequests},
		{"cancelled", Cancelled(""), ErrCodeRequestCancelled},
		{"unavailable", ServiceUnavailable(""), ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.resp.Error.Code)
			}
			if tt.resp.Error.Message == "" {
				t.Error("Expected a default message")
			}
		})
	}
}
