package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/trustsum/internal/batch"
	"github.com/sanonone/trustsum/internal/server"
	"github.com/sanonone/trustsum/pkg/engine"
)

const article = `Heavy rain flooded the river valley on Monday. Rescue teams evacuated
families from the river valley while heavy rain kept falling. Officials said the
river valley flood was the worst in decades, and rescue teams worked through the night.`

func setup(t *testing.T, token string) (*Client, string) {
	t.Helper()
	eng, err := engine.New(engine.DefaultOptions())
	require.NoError(t, err)

	datasetDir := t.TempDir()
	runner := batch.NewRunner(eng, nil, batch.Options{
		DatasetDir: datasetDir,
		TargetKey:  []string{"full_text"},
	})
	s := server.NewServer(eng, runner, "", token)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})
	return NewFromURL(ts.URL+"/", token), datasetDir
}

func TestClient_Summarize(t *testing.T) {
	c, _ := setup(t, "secret")
	require.NoError(t, c.Healthz())

	res, err := c.Summarize(SummarizeRequest{
		Name:       "flood",
		Text:       article,
		Reference:  "heavy rain flooded the river valley",
		Parameters: map[string]any{"trustrank_bias_amount": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "flood", res.Name)
	assert.Len(t, res.Seeds, 3)
	assert.NotEmpty(t, res.Summaries)
	_, ok := res.Best()
	assert.True(t, ok)
}

func TestClient_APIError(t *testing.T) {
	c, _ := setup(t, "secret")

	_, err := c.Summarize(SummarizeRequest{Text: "rain"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "insufficient data")

	unauth := NewFromURL(c.baseURL, "")
	_, err = unauth.Summarize(SummarizeRequest{Text: article})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = c.GetRun("unknown")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Runs(t *testing.T) {
	c, datasetDir := setup(t, "")
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		data, err := json.Marshal(map[string]string{"full_text": article})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(datasetDir, name), data, 0o644))
	}

	run, err := c.StartRun(nil, []string{"c.json"})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Total)

	done, err := c.WaitRun(run.ID, 10*time.Millisecond, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, done.Done())
	require.NotNil(t, done.Report)
	assert.Zero(t, done.Report.Failed)
	require.Len(t, done.Report.Documents, 2)
	assert.Equal(t, "a.json", done.Report.Documents[0].Name)
	assert.Equal(t, "b.json", done.Report.Documents[1].Name)
	assert.Positive(t, done.Report.Documents[0].Candidates)
}

func TestClient_ConnectionError(t *testing.T) {
	c := New("127.0.0.1", 1, "")
	err := c.Healthz()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection error")
}
