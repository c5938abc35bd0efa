package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

// GRPCServer exposes the lifecycle services as questkeeper.Lifecycle.
type GRPCServer struct {
	address    string
	logger     logging.Logger
	characters *services.CharacterService
	adventures *services.AdventureService
	episodes   *services.EpisodeService
	jwtSecret  []byte
}

func NewGRPCServer(address string, l logging.Logger, characters *services.CharacterService,
	adventures *services.AdventureService, episodes *services.EpisodeService, jwtSecret string) (*GRPCServer, error) {
	return &GRPCServer{
		address:    address,
		logger:     l.With("module", "grpc_server"),
		characters: characters,
		adventures: adventures,
		episodes:   episodes,
		jwtSecret:  []byte(jwtSecret),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
	)
	srv.RegisterService(&LifecycleServiceDesc, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "shutting down gRPC server")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "gRPC server listening", "address", lis.Addr().String())
	return srv.Serve(lis)
}
