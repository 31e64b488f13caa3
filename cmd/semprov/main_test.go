package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semprov/storage"
)

// Two stock-book rows for different stock numbers; the second cites the
// first as an earlier sale of the same object.
const records = `{"pi_record_no":"1","book_record":{"stock_book_no":"3","page_number":"12","row_number":"4","transaction":"Sold"},"object":{"knoedler_number":"A1","title":"Landscape"},"entry_date":{"year":"1890","month":"3","day":"1"},"sale_date":{"year":"1891","month":"5"},"purchase":{"amount":"1000","currency":"dollars"},"sale":{"amount":"1500","currency":"dollars"},"purchase_seller":[{"name":"Smith, John"}],"sale_buyer":[{"name":"Jones"}]}
{"pi_record_no":"2","book_record":{"stock_book_no":"5","page_number":"1","row_number":"1","transaction":"Sold"},"object":{"knoedler_number":"B2","title":"Landscape"},"entry_date":{"year":"1900","month":"1","day":"2"},"sale_date":{"year":"1900","month":"6"},"purchase":{"amount":"800","currency":"dollars"},"purchase_seller":[{"name":"Jones"}],"sale_buyer":[{"name":"Brown"}],"citations":[{"direction":"prev","cat":"3","lot":"12.4","date":"1890-03-01"}]}
{"pi_record_no":"3","book_record":{"stock_book_no":"5","page_number":"1","row_number":"2","transaction":"Framed"},"object":{"knoedler_number":"C3"}}
`

// workspace writes the records and a config file into a temp dir and
// isolates the loader from the user's own configuration.
func workspace(t *testing.T, unknownLot string) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "books"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "books", "knoedler.jsonl"), []byte(records), 0644))

	cfg := `project:
  name: knoedler
input:
  root: ` + filepath.Join(dir, "data") + `
output:
  backend: fs
  dir: ` + filepath.Join(dir, "output") + `
state:
  graph: ` + filepath.Join(dir, "state", "postsale.json.zst") + `
  map: ` + filepath.Join(dir, "state", "map.json") + `
  map_backend: file
post_sale:
  unknown_lot: ` + unknownLot + `
  dot: ` + filepath.Join(dir, "state", "postsale.dot") + `
  dot_min_size: 2
metrics:
  textfile: ` + filepath.Join(dir, "metrics.prom") + `
log:
  level: error
`
	cfgPath = filepath.Join(dir, "semprov.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return dir, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "semprov version "+Version)
}

func TestIngestRewriteAndDot(t *testing.T) {
	dir, cfgPath := workspace(t, "skip")

	_, err := execute(t, "ingest", "--config", cfgPath)
	require.NoError(t, err)

	m, err := storage.NewMapFile(filepath.Join(dir, "state", "map.json")).LoadMap(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 1)
	var from string
	for k := range m {
		from = k
	}

	_, err = os.Stat(filepath.Join(dir, "state", "postsale.json.zst"))
	require.NoError(t, err)
	dot, err := os.ReadFile(filepath.Join(dir, "state", "postsale.dot"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "digraph postsale {"))
	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "semprov_export_documents_total")

	quoted := `"` + from + `"`
	assert.Positive(t, countContaining(t, filepath.Join(dir, "output"), quoted))

	out, err := execute(t, "rewrite", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "failed: 0")
	assert.Zero(t, countContaining(t, filepath.Join(dir, "output"), quoted))

	out, err = execute(t, "rewrite", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rewritten: 0")

	out, err = execute(t, "graph", "dot", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "subgraph cluster_0")
	assert.Contains(t, out, "3 12.4 (1890-03-01)")
}

func TestGraphDotWithoutState(t *testing.T) {
	_, cfgPath := workspace(t, "skip")
	_, err := execute(t, "graph", "dot", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run ingest first")
}

func TestIngestUnknownLotPolicy(t *testing.T) {
	orphan := `{"pi_record_no":"9","book_record":{"stock_book_no":"7","page_number":"2","row_number":"3","transaction":"Sold"},"object":{"knoedler_number":"Z9"},"entry_date":{"year":"1910"},"citations":[{"direction":"prev","cat":"Br-99","lot":"0001","date":"1850"}]}` + "\n"

	for _, tt := range []struct {
		policy  string
		wantErr bool
	}{
		{policy: "skip"},
		{policy: "error", wantErr: true},
	} {
		t.Run(tt.policy, func(t *testing.T) {
			dir, cfgPath := workspace(t, tt.policy)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "books", "knoedler.jsonl"), []byte(orphan), 0644))

			_, err := execute(t, "ingest", "--config", cfgPath)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Br-99 0001 (1850)")
		})
	}
}

func countContaining(t *testing.T, root, needle string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.Contains(data, []byte(needle)) {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	want := filepath.Join(home, ".config", "semprov", "config.yaml")

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))
	require.FileExists(t, want)

	require.NoError(t, os.WriteFile(want, []byte("log:\n  level: debug\n"), 0644))
	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(data), "existing user config overwritten")
}
