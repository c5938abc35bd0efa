// Package client talks to a questkeeper server over the questkeeper.Lifecycle
// gRPC service.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	gs "github.com/dmitrijs2005/questkeeper/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
)

// GRPCClient sends every call with the access token of one player.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, s.accessToken), method, req, reply, cc, opts...)
}

// NewLifecycleClient prepares a connection to endpointURL. Extra dial options
// are appended to the defaults (plaintext, JSON codec).
func NewLifecycleClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(gs.Codec())),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

// Call invokes a lifecycle method by name. req and reply are the message
// structs of the server package, or json.RawMessage values.
func (s *GRPCClient) Call(ctx context.Context, method string, req, reply any) error {
	return s.mapError(s.conn.Invoke(ctx, gs.FullMethod(method), req, reply))
}

func (s *GRPCClient) GetCharacter(ctx context.Context, characterID int64) (*gs.CharacterReply, error) {
	out := &gs.CharacterReply{}
	if err := s.Call(ctx, "GetCharacter", &gs.CharacterRequest{CharacterID: characterID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GRPCClient) RequestPortraitUpload(ctx context.Context, characterID int64) (key, url string, err error) {
	out := &gs.PortraitUploadReply{}
	if err := s.Call(ctx, "RequestPortraitUpload", &gs.CharacterRequest{CharacterID: characterID}, out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

func (s *GRPCClient) PortraitURL(ctx context.Context, characterID int64) (string, error) {
	out := &gs.PortraitURLReply{}
	if err := s.Call(ctx, "PortraitURL", &gs.CharacterRequest{CharacterID: characterID}, out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError turns status codes back into the sentinel errors the server started from.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.PermissionDenied:
		return common.ErrorAccessDenied
	case codes.Aborted:
		return common.ErrorConflict
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
