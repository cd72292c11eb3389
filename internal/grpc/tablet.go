package grpc

import (
	"context"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	grpc2 "google.golang.org/grpc"
)

const (
	serviceName = "tabletscan.v1.TabletService"
	// ScanMethod is the full method name of the scan round trip.
	ScanMethod = "/" + serviceName + "/Scan"
)

// ScanRequest asks a tablet server for one batch of a scan.
type ScanRequest struct {
	Table          string              `json:"table"`
	Range          data.Range          `json:"range"`
	Columns        []data.Column       `json:"columns,omitempty"`
	Authorizations []string            `json:"authorizations,omitempty"`
	Iterators      []iterators.Setting `json:"iterators,omitempty"`
	BatchSize      int                 `json:"batchSize"`
	Isolated       bool                `json:"isolated,omitempty"`
	// SessionID continues an isolated scan on the snapshot the server pinned for it.
	SessionID string `json:"sessionId,omitempty"`
}

// ScanResponse carries one batch. An empty batch with More unset ends the scan. A server that
// stopped early without producing entries sets More and Continue, the key to resume after.
type ScanResponse struct {
	Entries   []data.Entry `json:"entries,omitempty"`
	More      bool         `json:"more"`
	Continue  *data.Key    `json:"continue,omitempty"`
	SessionID string       `json:"sessionId,omitempty"`
}

// TabletServiceServer is implemented by tablet servers.
type TabletServiceServer interface {
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}

// TabletService_ServiceDesc describes the tablet service for grpc.Server.RegisterService.
var TabletService_ServiceDesc = grpc2.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TabletServiceServer)(nil),
	Methods: []grpc2.MethodDesc{
		{
			MethodName: "Scan",
			Handler:    scanHandler,
		},
	},
	Streams: []grpc2.StreamDesc{},
}

func scanHandler(srv any, ctx context.Context, dec func(any) error,
	interceptor grpc2.UnaryServerInterceptor) (any, error) {
	in := new(ScanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TabletServiceServer).Scan(ctx, in)
	}
	info := &grpc2.UnaryServerInfo{
		Server:     srv,
		FullMethod: ScanMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TabletServiceServer).Scan(ctx, req.(*ScanRequest))
	}
	return interceptor(ctx, in, info, handler)
}
