// Package errors provides coded domain errors for passkeep.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Cleanup errors
	CodeCleanupTableNotFound     Code = "CLEANUP_TABLE_NOT_FOUND"
	CodeCleanupOperationNotFound Code = "CLEANUP_OPERATION_NOT_FOUND"
	CodeCleanupJobFailed         Code = "CLEANUP_JOB_FAILED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeCleanupTableNotFound, CodeCleanupOperationNotFound:
		return codes.NotFound
	case CodeCleanupJobFailed:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
