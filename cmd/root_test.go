package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/crawler"
	"github.com/JakeFAU/launch-table-crawler/internal/runner"
	"github.com/JakeFAU/launch-table-crawler/internal/scrape"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
	"github.com/JakeFAU/launch-table-crawler/internal/storage/memory"
)

const worldPage = `<html><body><table class="wikitable">
<tr><th>Date</th><th>Rocket</th><th>Mission</th><th>Site</th><th>Org</th></tr>
<tr><td>3 January 01:27</td><td>Falcon 9</td><td>Starlink</td><td>CCSFS</td><td><span class="flagicon"><a title="United States">US</a></span>SpaceX</td></tr>
<tr><td>10 January</td><td>Long March 2D</td><td></td><td>Jiuquan</td><td>CASC</td></tr>
</table></body></html>`

// pageLoader serves worldPage for every URL except those listed in missing.
type pageLoader struct {
	missing map[string]bool
}

func (l pageLoader) Load(_ context.Context, url string) (*goquery.Document, error) {
	if l.missing[url] {
		return nil, &crawler.FetchError{URL: url, Attempts: 1, Err: errors.New("status 404")}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(worldPage))
}

type testApp struct {
	cfg    config.Config
	store  *memory.BlobStore
	runner *runner.Runner
	closed bool
}

func (a *testApp) Close()                   { a.closed = true }
func (a *testApp) Config() config.Config    { return a.cfg }
func (a *testApp) Logger() *zap.Logger      { return zap.NewNop() }
func (a *testApp) Store() storage.BlobStore { return a.store }
func (a *testApp) Runner() *runner.Runner   { return a.runner }

// useTestApp swaps the application factory for one backed by memory
// services and returns the app once a command has built it.
func useTestApp(t *testing.T, loader pageLoader) func() *testApp {
	t.Helper()
	var built *testApp
	store := memory.NewBlobStore()
	original := newApp
	newApp = func(_ context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
		r := runner.New(loader, store, nil, nil, clock, runner.Config{
			Targets:       cfg.Targets,
			Composites:    cfg.Composites,
			MassEstimates: scrape.DefaultMassEstimates(),
		}, zap.NewNop())
		built = &testApp{cfg: cfg, store: store, runner: r}
		return built, nil
	}
	t.Cleanup(func() {
		newApp = original
		cfgFile = ""
	})
	return func() *testApp { return built }
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCrawlCommand(t *testing.T) {
	app := useTestApp(t, pageLoader{})

	out, err := execute(t, "crawl", "world-q1")
	require.NoError(t, err)
	assert.Contains(t, out, "world-q1: 2 launches saved to memory://world_launches_q1.json")
	assert.True(t, app().closed, "services are closed after the command")

	_, ok := app().store.Bytes("world_launches_q1.json")
	assert.True(t, ok)
}

func TestCrawlCommandFetchFailure(t *testing.T) {
	useTestApp(t, pageLoader{missing: map[string]bool{
		"https://en.m.wikipedia.org/wiki/List_of_Falcon_9_and_Falcon_Heavy_launches": true,
	}})

	_, err := execute(t, "crawl", "falcon")
	var fetchErr *crawler.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestCrawlCommandRequiresTarget(t *testing.T) {
	useTestApp(t, pageLoader{})

	_, err := execute(t, "crawl")
	require.Error(t, err)
}

func TestMergeAndAppendCommands(t *testing.T) {
	app := useTestApp(t, pageLoader{})

	_, err := execute(t, "append", "world-2025", "world-q1")
	var inputErr *runner.MergeInputError
	require.ErrorAs(t, err, &inputErr, "append needs a saved composite")

	out, err := execute(t, "merge", "world-2025")
	require.NoError(t, err)
	assert.Contains(t, out, "world-2025: 8 launches saved")

	out, err = execute(t, "append", "world-2025", "world-h1")
	require.NoError(t, err)
	assert.Contains(t, out, "world-2025: 10 launches saved")
	assert.NotNil(t, app())
}

func TestValidateCommand(t *testing.T) {
	app := useTestApp(t, pageLoader{})

	_, err := execute(t, "crawl", "world-q2")
	require.NoError(t, err)
	require.NotNil(t, app())

	out, err := execute(t, "validate", "world_launches_q2.json")
	require.NoError(t, err)
	assert.Contains(t, out, "flight 2: missing org.country")
	assert.Contains(t, out, "world_launches_q2.json: 2 records, 1 warnings")

	_, err = execute(t, "validate", "elsewhere.json")
	assert.ErrorContains(t, err, "--kind")

	_, err = execute(t, "validate", "elsewhere.json", "--kind", "world")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTargetsCommand(t *testing.T) {
	useTestApp(t, pageLoader{})

	out, err := execute(t, "targets")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╰"))

	header := rowWith(t, lines, "NAME")
	for _, col := range []string{"KIND", "OUTPUT", "SOURCE"} {
		assert.Contains(t, header, col)
	}
	falcon := rowWith(t, lines, "│ falcon ")
	assert.Contains(t, falcon, "falcon")
	composite := rowWith(t, lines, "│ world-2025 ")
	assert.Contains(t, composite, "world-q1+world-q2+world-q3+world-q4")
}

func rowWith(t *testing.T, lines []string, needle string) string {
	t.Helper()
	for _, line := range lines {
		if strings.Contains(line, needle) {
			return line
		}
	}
	require.Failf(t, "row not rendered", "no line contains %q", needle)
	return ""
}

func TestServeShutsDownOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, lis, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}), zap.NewNop())
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/", lis.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
