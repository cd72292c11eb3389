package security

import (
	"context"
	"encoding/base64"
	"errors"

	"google.golang.org/grpc/metadata"
)

const (
	principalHeader = "x-tabletscan-principal"
	tokenHeader     = "x-tabletscan-token"
)

var errMissingCredentials = errors.New("request carries no credentials")

// Credentials identify the caller of a scan. The scan client never inspects them; they travel
// with every round trip as per-RPC metadata.
type Credentials struct {
	Principal string
	Token     []byte
}

// NewPasswordCredentials returns credentials whose token is a plain password.
func NewPasswordCredentials(principal, password string) Credentials {
	return Credentials{Principal: principal, Token: []byte(password)}
}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (c Credentials) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{
		principalHeader: c.Principal,
		tokenHeader:     base64.StdEncoding.EncodeToString(c.Token),
	}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials. Deployments that need
// confidentiality configure TLS on the connection.
func (c Credentials) RequireTransportSecurity() bool {
	return false
}

// FromIncomingContext extracts the credentials a client attached to a request.
func FromIncomingContext(ctx context.Context) (Credentials, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Credentials{}, errMissingCredentials
	}
	principals := md.Get(principalHeader)
	tokens := md.Get(tokenHeader)
	if len(principals) == 0 || len(tokens) == 0 || principals[0] == "" {
		return Credentials{}, errMissingCredentials
	}
	token, err := base64.StdEncoding.DecodeString(tokens[0])
	if err != nil {
		return Credentials{}, errMissingCredentials
	}
	return Credentials{Principal: principals[0], Token: token}, nil
}
