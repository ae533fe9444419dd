package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iofimport/internal/testutil"
)

var epoch = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

// harness runs commands against a database in a temp dir, with XDG
// directories isolated and deterministic run ids.
type harness struct {
	t     *testing.T
	dir   string
	db    string
	ids   *testutil.SequenceIDs
	clock *testutil.StepClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "etc"))
	t.Setenv("IOFIMPORT_DB", "")
	t.Setenv("IOFIMPORT_LOG_LEVEL", "error")
	t.Setenv("AWS_REGION", "")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	return &harness{
		t:     t,
		dir:   dir,
		db:    filepath.Join(dir, "results.db"),
		ids:   testutil.NewSequenceIDs("run"),
		clock: testutil.NewStepClock(epoch, time.Second),
	}
}

// write stores a document under the harness dir and returns its path.
func (h *harness) write(name string, content []byte) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(h.t, os.WriteFile(path, content, 0o644))
	return path
}

// run executes the CLI and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	return h.runContext(context.Background(), &bytes.Buffer{}, args...)
}

func (h *harness) runContext(ctx context.Context, out io.Writer, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCommand(&RootOptions{IDs: h.ids, Clock: h.clock})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", h.db}, args...))
	err := cmd.ExecuteContext(ctx)
	if s, ok := out.(fmt.Stringer); ok {
		return s.String(), err
	}
	return "", err
}

// mustRun executes the CLI and fails the test on error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

// importFixtures imports the documents in order.
func (h *harness) importFixtures(docs ...string) {
	h.t.Helper()
	var paths []string
	for i, doc := range docs {
		paths = append(paths, h.write(filepath.Join("fixtures", string(rune('a'+i))+".xml"), []byte(doc)))
	}
	h.mustRun(append([]string{"import"}, paths...)...)
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
