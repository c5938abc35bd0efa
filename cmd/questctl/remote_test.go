package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/auth"
	gs "github.com/dmitrijs2005/questkeeper/internal/server/grpc"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/questkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucket is an httptest stand-in for presigned S3 URLs.
type bucket struct {
	srv         *httptest.Server
	body        []byte
	contentType string
}

func (b *bucket) PresignPut(_ context.Context, key string) (string, error) {
	return b.srv.URL + "/" + key, nil
}

func (b *bucket) PresignGet(_ context.Context, key string) (string, error) {
	return b.srv.URL + "/" + key + "?get", nil
}

// startServer runs a lifecycle server on a loopback port with alice (id 1)
// owning an unvalidated character (id 1).
func startServer(t *testing.T, secret string) (endpoint string, b *bucket) {
	t.Helper()
	ctx := context.Background()

	gw, err := dbx.Open(ctx, dbx.DialectSQLite, dbx.SQLiteDSN(filepath.Join(t.TempDir(), "quest.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	repos := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, repos.RunMigrations(ctx, gw.DB()))

	_, err = repos.Players(gw.DB()).Create(ctx, &models.Player{Handle: "alice"})
	require.NoError(t, err)
	u, err := repos.Universes(gw.DB()).Create(ctx, &models.Universe{Name: "Eldra"})
	require.NoError(t, err)

	b = &bucket{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.body, _ = io.ReadAll(r.Body)
		b.contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(b.srv.Close)

	log := logging.Discard()
	characters := services.NewCharacterService(gw, repos, b, log, metrics.Nop{})
	_, err = characters.Create(ctx, 1, services.NewCharacter{Name: "Ilse", UniverseID: u.ID})
	require.NoError(t, err)

	srv, err := gs.NewGRPCServer("", log, characters,
		services.NewAdventureService(gw, repos, log, metrics.Nop{}),
		services.NewEpisodeService(gw, repos, log, metrics.Nop{}), secret)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(serveCtx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return lis.Addr().String(), b
}

func aliceToken(t *testing.T, secret string) string {
	token, err := auth.GenerateToken(1, []byte(secret), time.Hour)
	require.NoError(t, err)
	return token
}

func TestCall(t *testing.T) {
	endpoint, _ := startServer(t, "s3cret")
	token := aliceToken(t, "s3cret")

	out, err := run(t, "call", "GetCharacter", `{"character_id":1}`, "--endpoint", endpoint, "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Ilse"`)

	out, err = run(t, "call", "ListMyCharacters", "--endpoint", endpoint, "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, `"characters":[{"id":1`)

	_, err = run(t, "call", "AcceptValidation", `{"character_id":1}`, "--endpoint", endpoint, "--token", token)
	require.ErrorContains(t, err, "access denied")

	_, err = run(t, "call", "GetCharacter", `{not json`, "--endpoint", endpoint, "--token", token)
	require.ErrorContains(t, err, "not valid JSON")

	_, err = run(t, "call", "GetCharacter", "--endpoint", endpoint, "--token", "")
	require.ErrorContains(t, err, "--token is required")
}

func TestPortraitUploadAndURL(t *testing.T) {
	endpoint, b := startServer(t, "s3cret")
	token := aliceToken(t, "s3cret")

	img := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	path := filepath.Join(t.TempDir(), "ilse.png")
	require.NoError(t, os.WriteFile(path, img, 0o600))

	out, err := run(t, "portrait", "upload", "--character", "1", "--file", path, "--endpoint", endpoint, "--token", token)
	require.NoError(t, err)
	key := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(key, "portraits/"), key)
	assert.Equal(t, img, b.body)
	assert.Equal(t, "image/png", b.contentType)

	out, err = run(t, "portrait", "url", "--character", "1", "--endpoint", endpoint, "--token", token)
	require.NoError(t, err)
	assert.Equal(t, b.srv.URL+"/"+key+"?get\n", out)
}
