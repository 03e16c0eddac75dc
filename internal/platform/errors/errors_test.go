package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := WrapWithMetadata(CodeCleanupTableNotFound, "resolve table", map[string]string{"table": "Widgets"}, stderrors.New("missing"))
	if !stderrors.Is(err, &Error{Code: CodeCleanupTableNotFound}) {
		t.Fatal("expected code match")
	}
	if stderrors.Is(err, &Error{Code: CodeCleanupJobFailed}) {
		t.Fatal("expected code mismatch")
	}
	wrapped := fmt.Errorf("run: %w", err)
	if got := CodeOf(wrapped); got != CodeCleanupTableNotFound {
		t.Fatalf("CodeOf = %q, want %q", got, CodeCleanupTableNotFound)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %q, want %q", got, CodeUnknown)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := WrapWithMetadata(CodeCleanupJobFailed, "cleanup Secrets", nil, cause)
	if err.Error() != "cleanup Secrets: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if (&Error{Code: CodeCleanupTableNotFound, Message: "not found"}).Error() != "not found" {
		t.Fatal("expected bare message without cause")
	}
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeCleanupTableNotFound, codes.NotFound},
		{CodeCleanupOperationNotFound, codes.NotFound},
		{CodeCleanupJobFailed, codes.Internal},
		{CodeUnknown, codes.Unknown},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestToGRPCStatusAttachesDetails(t *testing.T) {
	err := WrapWithMetadata(CodeCleanupOperationNotFound, "resolve operation", map[string]string{"operation": "cleanupSoftDeletedThings"}, nil)
	st, ok := status.FromError(err.ToGRPCStatus("en-US", "Cleanup job is not available."))
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", st.Code())
	}
	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.Reason != string(CodeCleanupOperationNotFound) || info.Domain != Domain {
		t.Fatalf("unexpected error info %+v", info)
	}
	if info.Metadata["operation"] != "cleanupSoftDeletedThings" {
		t.Fatalf("unexpected metadata %v", info.Metadata)
	}
	if localized == nil || localized.Message != "Cleanup job is not available." {
		t.Fatalf("unexpected localized message %+v", localized)
	}
}
