package errors_test

import (
	"errors"
	"fmt"
	"testing"

	serr "github.com/next-trace/scg-service-state/contract/errors"
)

func TestCodeAndVars(t *testing.T) {
	e := serr.Code(serr.ErrCodePublishFailed)
	if e.Error() != serr.ErrCodePublishFailed {
		t.Fatalf("unexpected error string: %s", e.Error())
	}

	// exported variables must carry their codes
	tests := []struct {
		err  error
		code string
	}{
		{serr.ErrServiceNotFound, serr.ErrCodeServiceNotFound},
		{serr.ErrInvalidRoute, serr.ErrCodeInvalidRoute},
		{serr.ErrDuplicateName, serr.ErrCodeDuplicateName},
		{serr.ErrConfigInvalid, serr.ErrCodeConfigInvalid},
		{serr.ErrPublishFailed, serr.ErrCodePublishFailed},
		{serr.ErrSubscribeFailed, serr.ErrCodeSubscribeFailed},
		{serr.ErrSerializationFailed, serr.ErrCodeSerializationFailed},
	}

	for _, tc := range tests {
		if !errors.Is(tc.err, serr.Code(tc.code)) {
			t.Fatalf("expected %s to be %s", tc.err, tc.code)
		}
	}
}

func TestFromError(t *testing.T) {
	if serr.FromError(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}

	nf := serr.NotFound("No record found for id '%v'", 7)
	wrapped := fmt.Errorf("get: %w", nf)

	if got := serr.FromError(wrapped); got != nf {
		t.Fatalf("want the wrapped ServiceError back, got %+v", got)
	}

	if nf.ClassName != serr.ClassNotFound || nf.Code != 404 || nf.Message != "No record found for id '7'" {
		t.Fatalf("unexpected not-found error: %+v", nf)
	}

	base := errors.New("boom")

	got := serr.FromError(base)
	if got.Message != "boom" || got.ClassName != serr.ClassGeneralError || got.Code != 500 {
		t.Fatalf("unexpected general error: %+v", got)
	}

	if !errors.Is(got, base) {
		t.Fatalf("general error must unwrap to its cause")
	}
}
