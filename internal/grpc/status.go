package grpc

import (
	"fmt"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain scopes the ErrorInfo reasons below.
const Domain = "tabletscan.litetable.io"

// Reasons a tablet server attaches to a failed scan.
const (
	ReasonTableNotFound     = "TABLE_NOT_FOUND"
	ReasonTableDeleted      = "TABLE_DELETED"
	ReasonTableOffline      = "TABLE_OFFLINE"
	ReasonNotServingTablet  = "NOT_SERVING_TABLET"
	ReasonIsolationConflict = "ISOLATION_CONFLICT"
	ReasonInvalidOption     = "INVALID_OPTION"
	ReasonPermissionDenied  = "PERMISSION_DENIED"
)

// Status returns a status error carrying reason as an ErrorInfo detail.
func Status(code codes.Code, reason string, format string, args ...any) error {
	st := status.New(code, fmt.Sprintf(format, args...))
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: Domain,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ReasonOf extracts the status code and the reason attached by Status. Errors that are not status
// errors report codes.Unknown.
func ReasonOf(err error) (codes.Code, string) {
	st, ok := status.FromError(err)
	if !ok {
		return codes.Unknown, ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return st.Code(), info.GetReason()
		}
	}
	return st.Code(), ""
}
