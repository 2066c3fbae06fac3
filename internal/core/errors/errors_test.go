package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "file not indexed")
		if err.Error() != "[NOT_FOUND] file not indexed" {
			t.Errorf("expected [NOT_FOUND] file not indexed, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("wrapped error should unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid query")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
		if IsCode(errors.New("plain"), CodeInternal) {
			t.Error("plain errors carry no code")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeInternal, "parse failed"), CtxPath, "src/lib.rs")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected a DomainError")
		}
		if de.Context[CtxPath] != "src/lib.rs" {
			t.Errorf("context path = %v", de.Context[CtxPath])
		}

		wrapped := AddContext(errors.New("plain"), CtxSymbol, "main")
		if !IsCode(wrapped, CodeInternal) {
			t.Error("plain errors gain an internal code when context is attached")
		}
	})
}
