package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/committy/internal/api"
	"github.com/mcoot/committy/internal/factory"
	"github.com/mcoot/committy/internal/services/auth"
	sqlitestorage "github.com/mcoot/committy/internal/storage/sqlite"
)

const adminKey = "e2e-admin-key"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	keyFile    string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "committy-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/committy")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		keyFile:    filepath.Join(t.TempDir(), "admin_key"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--admin-key-file", r.keyFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "COMMITTY_ADMIN_KEY=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	app      *factory.App
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)

	// Create application on a throwaway database
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	sqliteCfg := sqlitestorage.DefaultConfig()
	sqliteCfg.Path = filepath.Join(t.TempDir(), "committy.db")
	app, err := factory.New(factory.Config{
		Logger:       logger,
		StorageType:  factory.StorageTypeSQLite,
		SQLiteConfig: &sqliteCfg,
		AuthConfig:   auth.Config{AdminKeyHash: string(hash)},
	})
	require.NoError(t, err)

	seeded, err := app.SeedCatalog(context.Background(), "")
	require.NoError(t, err)
	require.Positive(t, seeded)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		CatalogService:    app.CatalogService,
		SessionController: app.SessionController,
		ReportService:     app.ReportService,
		AuthService:       app.AuthService,
		PublicBaseURL:     "http://" + addr,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		app:    app,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type cardResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stats [4]int `json:"stats"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	HandSize int    `json:"hand_size"`
	URL      string `json:"url"`
}

type dealResponse struct {
	Token string         `json:"token"`
	Seed  uint64         `json:"seed"`
	Hand1 []cardResponse `json:"hand1"`
	Hand2 []cardResponse `json:"hand2"`
}

type verdictResponse struct {
	Kind      string `json:"kind"`
	Precedent struct {
		WinnerID int64 `json:"winner_id"`
		LoserID  int64 `json:"loser_id"`
	} `json:"precedent"`
}

type reportListResponse struct {
	Reports []struct {
		ID     int64 `json:"id"`
		CardID int64 `json:"card_id"`
	} `json:"reports"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Seeded catalog has enough cards for a single-card hand
	output, err := cli.run("session", "new", "--hand-size", "1")
	require.NoError(t, err, "output: %s", output)

	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	require.NotEmpty(t, session.Token)

	// The same token draws the same hands every time
	output, err = cli.run("session", "draw", "--hand-size", "1", session.Token)
	require.NoError(t, err, "output: %s", output)
	var first dealResponse
	require.NoError(t, json.Unmarshal([]byte(output), &first))

	output, err = cli.run("session", "draw", "--hand-size", "1", session.Token)
	require.NoError(t, err, "output: %s", output)
	var second dealResponse
	require.NoError(t, json.Unmarshal([]byte(output), &second))

	assert.Equal(t, first, second)
	require.Len(t, first.Hand1, 1)
	require.Len(t, first.Hand2, 1)
	assert.NotEqual(t, first.Hand1[0].ID, first.Hand2[0].ID)

	// Local decode agrees with the server
	output, err = cli.run("token", "decode", session.Token)
	require.NoError(t, err, "output: %s", output)
	var decoded struct {
		Seed uint64 `json:"seed"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, first.Seed, decoded.Seed)

	// First verdict sets the precedent, a contrary one is overruled
	c1, c2 := first.Hand1[0].ID, first.Hand2[0].ID
	output, err = cli.run("verdict", formatID(c1), formatID(c2), "--winner", formatID(c1))
	require.NoError(t, err, "output: %s", output)
	var verdict verdictResponse
	require.NoError(t, json.Unmarshal([]byte(output), &verdict))
	assert.Equal(t, "new_precedent", verdict.Kind)

	output, err = cli.run("verdict", formatID(c2), formatID(c1), "--winner", formatID(c2))
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &verdict))
	assert.Equal(t, "overruled", verdict.Kind)
	assert.Equal(t, c1, verdict.Precedent.WinnerID)
}

func TestCLI_BadToken(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "draw", "--hand-size", "1", "Definitely-Not-Words")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_SEED_TOKEN")
}

func TestCLI_SubmitAndModerate(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("cards", "submit", "--name", "Stand-up Meeting", "--stats", "4,4,4,4", "--beats", "1", "--loses-to", "2")
	require.NoError(t, err, "output: %s", output)
	var card cardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &card))
	assert.Equal(t, [4]int{4, 4, 4, 4}, card.Stats)

	output, err = cli.run("cards", "report", formatID(card.ID))
	require.NoError(t, err, "output: %s", output)

	// Admin commands need the key
	_, err = cli.run("admin", "reports", "list")
	require.Error(t, err)

	output, err = cli.run("admin", "login", adminKey)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("admin", "reports", "list")
	require.NoError(t, err, "output: %s", output)
	var reports reportListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reports))
	require.Len(t, reports.Reports, 1)
	assert.Equal(t, card.ID, reports.Reports[0].CardID)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
