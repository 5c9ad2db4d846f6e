package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/voter-roll/internal/directory/remote"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/tests/testutil"
)

func newTestApp(t *testing.T, cfg Config) *testApp {
	t.Helper()
	st := testutil.NewTestStore(t)
	testutil.SeedBooth(t, st, 12, 7, 25)
	testutil.SeedBooth(t, st, 12, 8, 3)
	return &testApp{t: t, cfg: cfg, app: New(st, cfg)}
}

type testApp struct {
	t   *testing.T
	cfg Config
	app *fiber.App
}

func (a *testApp) do(req *http.Request, out interface{}) int {
	a.t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func (a *testApp) get(path string, out interface{}) int {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), out)
}

func (a *testApp) post(path, body string, out interface{}) int {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func TestCountAndBooths(t *testing.T) {
	a := newTestApp(t, Config{})

	var count remote.WardCountResponse
	require.Equal(t, http.StatusOK, a.get("/api/voter/by-ward/12", &count))
	assert.Equal(t, 28, count.Data.TotalVoters)

	var booths remote.BoothsResponse
	require.Equal(t, http.StatusOK, a.get("/api/booth/getBooths/12", &booths))
	require.Len(t, booths.Booths, 2)
	assert.Equal(t, 7, booths.Booths[0].BoothNumber)

	assert.Equal(t, http.StatusBadRequest, a.get("/api/voter/by-ward/twelve", nil))
}

func TestVotersByBoothPages(t *testing.T) {
	a := newTestApp(t, Config{})

	var page remote.BoothVotersResponse
	require.Equal(t, http.StatusOK, a.get("/api/voter/by-booth/7?page=2&limit=20&search=", &page))
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Voters, 5)
	assert.Equal(t, 21, page.Voters[0].SerialNo)

	require.Equal(t, http.StatusOK, a.get("/api/voter/by-booth/7?search=Voter%2012", &page))
	assert.Equal(t, 1, page.Total)
}

func TestPoliticalFlow(t *testing.T) {
	a := newTestApp(t, Config{})

	var ack remote.BulkAck
	status := a.post("/api/voter/political-status/bulk",
		`{"updates":[
			{"voterId":"7-001","party":"UDF","updatedBy":"admin"},
			{"voterId":"7-002","party":"UDF","updatedBy":"admin"}
		]}`, &ack)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, ack.Success)
	assert.Equal(t, 2, ack.Modified)

	var results remote.StatusVotersResponse
	require.Equal(t, http.StatusOK,
		a.get("/api/voter/political-status/7?filter=unmarked&party=LDF&page=1&limit=20", &results))
	assert.Equal(t, 23, results.Total)

	require.Equal(t, http.StatusOK,
		a.get("/api/voter/political-status/7?filter=marked&party=UDF&page=1&limit=20", &results))
	assert.Equal(t, 2, results.Total)
	require.NotNil(t, results.Results[0].PoliticalStatus)

	assert.Equal(t, http.StatusBadRequest,
		a.get("/api/voter/political-status/7?filter=maybe", nil))
}

func TestVotingFlow(t *testing.T) {
	a := newTestApp(t, Config{})

	var ack remote.BulkAck
	require.Equal(t, http.StatusOK, a.post("/api/voter/voting-status/bulk",
		`{"updates":[{"voterId":"8-002","hasVoted":true,"updatedBy":"admin"}]}`, &ack))
	assert.Equal(t, 1, ack.Modified)

	var results remote.StatusVotersResponse
	require.Equal(t, http.StatusOK,
		a.get("/api/voter/voting-status/8?filter=notVoted&party=ALL", &results))
	assert.Equal(t, 2, results.Total)

	require.Equal(t, http.StatusOK, a.get("/api/voter/voting-status/8?filter=voted", &results))
	require.Equal(t, 1, results.Total)
	assert.Equal(t, "8-002", results.Results[0].ID)

	require.Equal(t, http.StatusOK, a.get("/api/voter/voting-status/8?filter=all&party=UNKNOWN", &results))
	assert.Equal(t, 0, results.Total)
}

func TestBulkRejections(t *testing.T) {
	a := newTestApp(t, Config{})

	var errResp remote.ErrorResponse
	assert.Equal(t, http.StatusBadRequest,
		a.post("/api/voter/political-status/bulk", `{"updates":[]}`, &errResp))
	assert.False(t, errResp.Success)

	assert.Equal(t, http.StatusBadRequest, a.post("/api/voter/political-status/bulk",
		`{"updates":[{"voterId":"7-001","party":"ALL","updatedBy":"admin"}]}`, nil))

	assert.Equal(t, http.StatusNotFound, a.post("/api/voter/voting-status/bulk",
		`{"updates":[{"voterId":"nope","hasVoted":true,"updatedBy":"admin"}]}`, nil))
}

func TestTokenRequiredWhenSecretSet(t *testing.T) {
	a := newTestApp(t, Config{JWTSecret: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, a.get("/api/voter/by-ward/12", nil))
	assert.Equal(t, http.StatusOK, a.get("/healthz", nil))

	token, err := MintToken("s3cret", "field-7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/voter/by-ward/12", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, a.do(req, nil))

	forged, err := MintToken("other", "field-7", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/voter/by-ward/12", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, a.do(req, nil))
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := MintToken("s3cret", "field-7", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("s3cret", token)
	assert.Error(t, err)

	token, err = MintToken("s3cret", "field-7", time.Minute)
	require.NoError(t, err)
	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "field-7", claims.Operator)

	_, err = MintToken("", "field-7", time.Minute)
	assert.Error(t, err)
}

func TestGetVoterShowsMarkings(t *testing.T) {
	a := newTestApp(t, Config{})
	require.Equal(t, http.StatusOK, a.post("/api/voter/voting-status/bulk",
		`{"updates":[{"voterId":"8-002","hasVoted":true,"updatedBy":"admin"}]}`, nil))

	var resp struct {
		Success bool        `json:"success"`
		Voter   model.Voter `json:"voter"`
	}
	require.Equal(t, http.StatusOK, a.get("/api/voter/8-002", &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "8-002", resp.Voter.ID)
	assert.Equal(t, 8, resp.Voter.BoothNumber)
	assert.True(t, resp.Voter.HasVoted)

	assert.Equal(t, http.StatusNotFound, a.get("/api/voter/9-404", nil))
}
