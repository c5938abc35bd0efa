package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/logging"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", logging.Discard(), nil, nil, nil, "secret")
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", logging.Discard(), nil, nil, nil, "secret")
	if err != nil {
		t.Fatalf("NewGRPCServer error (constructor should not fail here): %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestLifecycleServiceDesc_MethodNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range LifecycleServiceDesc.Methods {
		if seen[m.MethodName] {
			t.Fatalf("duplicate method %q", m.MethodName)
		}
		seen[m.MethodName] = true
	}
	for _, name := range []string{
		"CreateCharacter", "GetCharacter", "RequestValidation", "AcceptValidation",
		"RequestTransfer", "AcceptTransfer", "GiftCharacter", "UpdateProfession",
		"CreateAdventure", "GetAdventure", "EnrollCharacter", "RemoveCharacter",
		"FinishAdventure", "DeleteAdventure", "ListEnrollmentCandidates",
		"RecordEpisode", "ApproveEpisode", "DeleteEpisode", "ListPendingEpisodes",
		"RequestPortraitUpload", "PortraitURL",
	} {
		if !seen[name] {
			t.Errorf("method %q not registered", name)
		}
	}
}
