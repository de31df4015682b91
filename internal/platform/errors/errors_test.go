package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := WithMetadata(CodeMissingRequiredField, "name resolved empty", map[string]string{"Field": "name"})
	if !stderrors.Is(err, New(CodeMissingRequiredField, "")) {
		t.Fatal("expected code match")
	}
	if stderrors.Is(err, New(CodeInvalidTierData, "")) {
		t.Fatal("expected code mismatch")
	}
}

func TestCodeOfWalksWrappedChain(t *testing.T) {
	inner := New(CodeIncompleteLocationData, "no venue or online url")
	wrapped := fmt.Errorf("synthesize evt-1: %w", inner)

	if got := CodeOf(wrapped); got != CodeIncompleteLocationData {
		t.Fatalf("code = %q, want %q", got, CodeIncompleteLocationData)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("code = %q, want empty", got)
	}
}

func TestHasCodeFindsInnerCode(t *testing.T) {
	inner := New(CodeUnknownEnumValue, "status")
	outer := Wrap(CodeValidationFailed, "event status", inner)
	if !HasCode(outer, CodeUnknownEnumValue) {
		t.Fatal("expected inner code to be found")
	}
	if HasCode(outer, CodeInvalidDateRange) {
		t.Fatal("unexpected code match")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeSourceUnavailable, "load event", stderrors.New("disk gone"))
	if got := err.Error(); got != "load event: disk gone" {
		t.Fatalf("message = %q", got)
	}
	if !stderrors.Is(err, err.Cause) {
		t.Fatal("expected unwrap to expose cause")
	}
}

func TestMetadataOfReturnsCopy(t *testing.T) {
	err := WithMetadata(CodeValidationFailed, "bad url", map[string]string{"Field": "image"})
	meta := MetadataOf(err)
	meta["Field"] = "changed"
	if err.Metadata["Field"] != "image" {
		t.Fatal("metadata must not be shared")
	}
	if MetadataOf(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeMissingRequiredField, http.StatusUnprocessableEntity},
		{CodeIncompleteLocationData, http.StatusUnprocessableEntity},
		{CodeInvalidLocale, http.StatusBadRequest},
		{CodeEventNotFound, http.StatusNotFound},
		{CodeStructuredDataDisabled, http.StatusNotFound},
		{CodeSourceUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s status = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestAborts(t *testing.T) {
	if !CodeMissingRequiredField.Aborts() {
		t.Fatal("missing required field must abort")
	}
	if CodeInvalidTierData.Aborts() {
		t.Fatal("invalid tier data must not abort")
	}
	if CodeStructuredDataDisabled.Aborts() {
		t.Fatal("disabled structured data must not count as an abort")
	}
}
