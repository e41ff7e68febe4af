package postgres

import (
	"errors"
	"testing"

	"meeting-brief-service/internal/domain"
)

func TestGetExecutorRejectsUnknownHandle(t *testing.T) {
	if _, err := getExecutor(nil, "not a tx"); !errors.Is(err, domain.ErrInvalidExecContext) {
		t.Errorf("err = %v, want ErrInvalidExecContext", err)
	}
}

func TestGetExecutorNilTxNeedsPool(t *testing.T) {
	if _, err := getExecutor(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
