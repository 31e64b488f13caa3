package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semprov/config"
	"github.com/c360studio/semprov/graph"
	"github.com/c360studio/semprov/storage"
)

var errDiskFull = errors.New("disk full")

// failingState loads from the wrapped store but refuses to save.
type failingState struct {
	storage.StateStore
}

func (failingState) Save(context.Context, *graph.State) error {
	return errDiskFull
}

func TestIngestStateSavedBeforeMap(t *testing.T) {
	dir, cfgPath := workspace(t, "skip")
	cfg, err := config.NewLoader(slog.Default()).Load(cfgPath)
	require.NoError(t, err)

	ctx := context.Background()
	app := NewApp(cfg, nil)
	defer app.Shutdown()
	require.NoError(t, app.Start(ctx))
	app.state = failingState{StateStore: app.state}

	_, err = app.Ingest(ctx)
	require.ErrorIs(t, err, errDiskFull)

	_, err = os.Stat(filepath.Join(dir, "state", "map.json"))
	assert.True(t, os.IsNotExist(err), "rewrite map written although the graph state was not")
}
