package grpc

import (
	"context"
	"errors"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/litetable/litetable-scan/internal/tablet"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

//go:generate mockgen -destination=tablet_mock.go -package=grpc -source=tablet.go

type scanner interface {
	Scan(ctx context.Context, creds security.Credentials, req *rpc.ScanRequest) (*rpc.ScanResponse, error)
}

type tabletService struct {
	scanner scanner
}

func (s *tabletService) Scan(ctx context.Context, req *rpc.ScanRequest) (*rpc.ScanResponse, error) {
	creds, err := security.FromIncomingContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	if req.Table == "" {
		return nil, rpc.Status(codes.InvalidArgument, rpc.ReasonInvalidOption, "table required")
	}

	resp, err := s.scanner.Scan(ctx, creds, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// toStatus translates a tablet failure into the status a client can classify.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, tablet.ErrTableNotFound):
		return rpc.Status(codes.NotFound, rpc.ReasonTableNotFound, "%v", err)
	case errors.Is(err, tablet.ErrTableDeleted):
		return rpc.Status(codes.NotFound, rpc.ReasonTableDeleted, "%v", err)
	case errors.Is(err, tablet.ErrTableOffline):
		return rpc.Status(codes.FailedPrecondition, rpc.ReasonTableOffline, "%v", err)
	case errors.Is(err, tablet.ErrNotServing):
		return rpc.Status(codes.FailedPrecondition, rpc.ReasonNotServingTablet, "%v", err)
	case errors.Is(err, tablet.ErrIsolationConflict):
		return rpc.Status(codes.Aborted, rpc.ReasonIsolationConflict, "%v", err)
	case errors.Is(err, iterators.ErrInvalidOption), errors.Is(err, iterators.ErrUnknownOperator):
		return rpc.Status(codes.InvalidArgument, rpc.ReasonInvalidOption, "%v", err)
	case errors.Is(err, security.ErrPermissionDenied):
		return rpc.Status(codes.PermissionDenied, rpc.ReasonPermissionDenied, "%v", err)
	case errors.Is(err, security.ErrBadCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		log.Error().Err(err).Msg("scan failed")
		return status.Error(codes.Internal, err.Error())
	}
}
