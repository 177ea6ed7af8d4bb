package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"field": "subject"})
	converted := ToDomainError(original)
	if converted.Code != "VALIDATION_FAILED" || converted.HTTPStatus != http.StatusBadRequest {
		t.Errorf("converted = %+v", converted)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	converted := ToDomainError(pgx.ErrNoRows)
	if converted.Code != "NOT_FOUND" || converted.HTTPStatus != http.StatusNotFound {
		t.Errorf("converted = %+v", converted)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	converted := ToDomainError(cause)
	if converted.Code != "INTERNAL_ERROR" || converted.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("converted = %+v", converted)
	}
	if !errors.Is(converted, cause) {
		t.Error("cause not preserved for logging")
	}
}

func TestStoreErrorHidesCause(t *testing.T) {
	err := NewStoreError(errors.New("password=hunter2 leaked"))
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err type = %T", err)
	}
	if domainErr.Message != "internal server error" {
		t.Errorf("message = %q leaks internals", domainErr.Message)
	}
}
