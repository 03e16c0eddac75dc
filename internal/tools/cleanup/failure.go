package cleanup

import (
	"errors"

	apperrors "github.com/louisbranch/passkeep/internal/platform/errors"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// failureReport is the machine-readable form of a failed run. It is derived
// from the gRPC status of the domain error so both surfaces agree.
type failureReport struct {
	Code     string            `json:"code"`
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Detail   string            `json:"detail"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func describeFailure(err error, l *Localizer) *failureReport {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return &failureReport{
			Code:    string(apperrors.CodeUnknown),
			Status:  codes.Unknown.String(),
			Message: err.Error(),
			Detail:  err.Error(),
		}
	}

	userMessage := localizedFailure(domainErr, l)
	st := status.Convert(domainErr.ToGRPCStatus(l.Locale(), userMessage))
	report := &failureReport{
		Code:    string(domainErr.Code),
		Status:  st.Code().String(),
		Message: userMessage,
		Detail:  st.Message(),
	}
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			report.Code = d.GetReason()
			report.Metadata = d.GetMetadata()
		case *errdetails.LocalizedMessage:
			report.Message = d.GetMessage()
		}
	}
	return report
}

func localizedFailure(err *apperrors.Error, l *Localizer) string {
	table := err.Metadata["table"]
	job := err.Metadata["job"]
	switch err.Code {
	case apperrors.CodeCleanupTableNotFound:
		return l.Sprintf("errors.cleanup_table_not_found", table)
	case apperrors.CodeCleanupOperationNotFound:
		return l.Sprintf("errors.cleanup_operation_not_found", job, table)
	case apperrors.CodeCleanupJobFailed:
		return l.Sprintf("errors.cleanup_job_failed", job, table)
	default:
		return err.Error()
	}
}
