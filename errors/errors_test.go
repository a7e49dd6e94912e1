package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeBackend, "bucket unreachable", http.StatusBadGateway)
	if !err.Retryable {
		t.Error("BACKEND_ERROR should be retryable")
	}
	if New(ErrCodeConfiguration, "bad", http.StatusInternalServerError).Retryable {
		t.Error("CONFIGURATION_ERROR should not be retryable")
	}
}

func TestConstructors_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want bool
	}{
		{"backend", Backend("googleGcs", "list", nil), true},
		{"partial publish", PartialPublish("local", "e", []string{"a.html"}, nil), true},
		{"not found", NotFound("file", "e/a.html"), false},
		{"configuration", Configuration("techdocs.requestUrl", "is required"), false},
		{"invalid input", InvalidInput("entityKey", "empty"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Retryable != tt.want {
				t.Errorf("Retryable = %v, want %v", tt.err.Retryable, tt.want)
			}
		})
	}
}

func TestConfiguration_FieldDetail(t *testing.T) {
	err := Configuration("techdocs.publisher.googleGcs.bucketName", "is required")
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if err.Details["field"] != "techdocs.publisher.googleGcs.bucketName" {
		t.Errorf("unexpected field detail %v", err.Details["field"])
	}
	if !strings.Contains(err.Error(), "bucketName: is required") {
		t.Errorf("expected field in message, got %q", err.Error())
	}
}

func TestUnknownPublisherType_NamesValue(t *testing.T) {
	err := UnknownPublisherType("azureBlob", []string{"local", "googleGcs", "awsS3"})
	msg := err.Error()
	for _, want := range []string{`"azureBlob"`, "local", "googleGcs", "awsS3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !IsConfiguration(err) {
		t.Error("expected IsConfiguration to be true")
	}
}

func TestBackend_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Backend("awsS3", "fetch", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["backend"] != "awsS3" || err.Details["operation"] != "fetch" {
		t.Errorf("unexpected details %v", err.Details)
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
}

func TestPartialPublish_FailedPaths(t *testing.T) {
	failed := []string{"index.html", "assets/app.js"}
	err := PartialPublish("local", "default/component/svc", failed, context.Canceled)

	wrapped := fmt.Errorf("publish: %w", err)
	if !IsPartialPublish(wrapped) {
		t.Fatal("expected IsPartialPublish through wrapping")
	}
	got := FailedPaths(wrapped)
	if len(got) != 2 || got[0] != "index.html" || got[1] != "assets/app.js" {
		t.Errorf("unexpected failed paths %v", got)
	}
	if !stderrors.Is(wrapped, context.Canceled) {
		t.Error("expected cause to be context.Canceled")
	}
}

func TestFailedPaths_OtherErrors(t *testing.T) {
	if FailedPaths(NotFound("file", "x")) != nil {
		t.Error("expected nil for non-partial error")
	}
	if FailedPaths(fmt.Errorf("plain")) != nil {
		t.Error("expected nil for plain error")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
		want bool
	}{
		{"not found", NotFound("file", "a/b"), IsNotFound, true},
		{"not found is not backend", NotFound("file", ""), IsBackend, false},
		{"invalid input", InvalidInput("entityKey", "contains '..'"), IsInvalidInput, true},
		{"plain error", fmt.Errorf("boom"), IsConfiguration, false},
		{"nil", nil, IsNotFound, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.is(tc.err); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNotFound_EmptyID(t *testing.T) {
	err := NotFound("entity", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("x: %w", InvalidInput("relativePath", "bad"))); !ok {
		t.Error("expected AsAppError to unwrap")
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to fail for plain errors")
	}
}
