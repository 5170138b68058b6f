package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/committy/internal/api"
	"github.com/mcoot/committy/internal/factory"
	"github.com/mcoot/committy/internal/services/auth"
)

const testAdminKey = "open-sesame"

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	s.Require().NoError(err)

	s.app = factory.NewTestAppWithAuth(auth.Config{AdminKeyHash: string(hash)})
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		CatalogService:    s.app.CatalogService,
		SessionController: s.app.SessionController,
		ReportService:     s.app.ReportService,
		AuthService:       s.app.AuthService,
		PublicBaseURL:     "http://committy.test",
	}))

	s.T().Setenv("COMMITTY_ADMIN_KEY", "")
	s.T().Setenv("COMMITTY_ADMIN_KEY_FILE", filepath.Join(s.T().TempDir(), "admin_key"))
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// run executes the CLI with JSON output and returns stdout
func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--output", "json"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (s *CLISuite) runJSON(v any, args ...string) {
	out, err := s.run(args...)
	s.Require().NoError(err, out)
	s.Require().NoError(json.Unmarshal([]byte(out), v), out)
}

func (s *CLISuite) TestHealth() {
	var result HealthResult
	s.runJSON(&result, "health")
	s.Equal("ok", result.Status)
}

func (s *CLISuite) TestSubmitAndList() {
	var card Card
	s.runJSON(&card, "cards", "submit", "--name", "Kevin", "--stats", "10,3,,2")
	s.Equal("Kevin", card.Name)
	s.Equal([4]int{10, 3, 1, 2}, card.Stats)

	var list CardList
	s.runJSON(&list, "cards", "list")
	s.Require().Len(list.Cards, 1)

	var count Count
	s.runJSON(&count, "cards", "list", "--count")
	s.Equal(1, count.Count)

	var got Card
	s.runJSON(&got, "cards", "get", "#1")
	s.Equal("Kevin", got.Name)
}

func (s *CLISuite) TestSubmitNeedsBothPrecedents() {
	_, err := s.run("cards", "submit", "--name", "Kevin", "--beats", "1")
	s.ErrorContains(err, "--beats and --loses-to")
}

func (s *CLISuite) TestSessionAndVerdict() {
	_, err := s.app.AddCards("A", "B", "C", "D", "E")
	s.Require().NoError(err)
	s.app.MockRandom.QueueUint64n(41)

	var session Session
	s.runJSON(&session, "session", "new", "--hand-size", "2")
	s.Equal("Large-Jackson", session.Token)

	var dealt Deal
	s.runJSON(&dealt, "session", "draw", "--hand-size", "2", "large-jackson")
	s.Equal("Large-Jackson", dealt.Token)
	s.Require().Len(dealt.Hand1, 2)
	s.Equal(int64(4), dealt.Hand1[0].ID)

	var verdict Verdict
	s.runJSON(&verdict, "verdict", "1", "2", "--winner", "2")
	s.Equal("new_precedent", verdict.Kind)

	s.runJSON(&verdict, "verdict", "2", "1", "--winner", "1")
	s.Equal("overruled", verdict.Kind)
	s.Equal(int64(2), verdict.Precedent.WinnerID)

	var outcome Outcome
	s.runJSON(&outcome, "precedent", "1", "2")
	s.Equal(int64(2), outcome.WinnerID)
}

func (s *CLISuite) TestBadTokenSuggestsNewSession() {
	_, err := s.app.AddCards("A", "B")
	s.Require().NoError(err)

	_, err = s.run("session", "draw", "--hand-size", "1", "Not-A-Token")
	var reqErr *RequestError
	s.Require().ErrorAs(err, &reqErr)
	s.Equal("INVALID_SEED_TOKEN", reqErr.API.Code)
	s.Contains(err.Error(), "session new")
}

func (s *CLISuite) TestTokenCommandsWorkOffline() {
	var result TokenResult
	s.runJSON(&result, "--server", "http://127.0.0.1:1", "token", "encode", "42")
	s.Equal("Large-Jackson", result.Token)

	s.runJSON(&result, "token", "decode", "LARGE-jackson")
	s.Equal(uint64(42), result.Seed)
	s.Equal("Large-Jackson", result.Token)

	_, err := s.run("token", "decode", "--strict", "Large-Rock")
	s.Error(err)
}

func (s *CLISuite) TestAdminReports() {
	_, err := s.app.AddCards("A")
	s.Require().NoError(err)

	var report Report
	s.runJSON(&report, "cards", "report", "1")

	_, err = s.run("admin", "reports", "list")
	var reqErr *RequestError
	s.Require().ErrorAs(err, &reqErr)
	s.Equal(401, reqErr.Status)

	var reports ReportList
	s.runJSON(&reports, "--admin-key", testAdminKey, "admin", "reports", "list")
	s.Require().Len(reports.Reports, 1)

	var cleared Cleared
	s.runJSON(&cleared, "--admin-key", testAdminKey, "admin", "reports", "clear", "1")
	s.Equal(1, cleared.Cleared)
}

func (s *CLISuite) TestAdminLoginPersistsKey() {
	_, err := s.run("admin", "login", testAdminKey)
	s.Require().NoError(err)

	var reports ReportList
	s.runJSON(&reports, "admin", "reports", "list")
	s.Empty(reports.Reports)
}

func (s *CLISuite) TestHashKey() {
	var result HashResult
	s.runJSON(&result, "admin", "hash-key", "swordfish")
	s.NoError(bcrypt.CompareHashAndPassword([]byte(result.Hash), []byte("swordfish")))
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("text", &buf, io.Discard, true)

	out.Print(Verdict{Kind: "overruled", ClaimedWinner: 2, Precedent: Outcome{WinnerID: 1, LoserID: 2}})
	out.Print(Card{ID: 3, Name: "Nokia", Stats: [4]int{10, 3, 4, 2}, Total: 19, Colour: "card_orange"})

	want := "Overruled: #1 beats #2, not #2\n" +
		"#3 Nokia (card_orange)\n" +
		"  Stats: 10/3/4/2 (total 19)\n"
	assert.Equal(t, want, buf.String())
}

func TestParseStats(t *testing.T) {
	stats, err := parseStats([]string{"5", "", " 7"})
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, 5, *stats[0])
	assert.Nil(t, stats[1])
	assert.Equal(t, 7, *stats[2])
	assert.Nil(t, stats[3])

	_, err = parseStats([]string{"1", "2", "3", "4", "5"})
	assert.Error(t, err)
	_, err = parseStats([]string{"x"})
	assert.Error(t, err)
}
