package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/apps/shared"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/listview"
	"github.com/trezcool/ratiba/core/workload"
	sharesvc "github.com/trezcool/ratiba/services/share"
	"github.com/trezcool/ratiba/testutil"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer, *sharesvc.ConsoleServiceMock) {
	t.Helper()
	ctx := testutil.Context()
	conf := &core.Config{Locale: "ar", TestMode: true, Database: core.DatabaseConfig{Engine: shared.EngineMemory}}
	logger := testutil.NopLogger()

	deps, err := shared.Setup(ctx, conf, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })
	require.NoError(t, deps.Store.Load(ctx, testutil.SchoolDataset()))
	deps.Selectors.Now = testutil.FixedClock

	renderer, err := listview.New(listview.Config{ItemHeight: 64, ContainerHeight: 128})
	require.NoError(t, err)

	share := sharesvc.NewConsoleServiceMock(logger)
	svc := bulk.NewService(deps.Store, deps.Selectors, share, logger, nil)
	svc.Now = testutil.FixedClock

	out := new(bytes.Buffer)
	return &commandLine{deps: deps, bulk: svc, renderer: renderer, out: out}, out, share
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantOut    []string
	wantNotOut []string
}

func Test_commandLine_run(t *testing.T) {
	root, err := core.ProjectRoot()
	require.NoError(t, err)
	demo := filepath.Join(root, "assets", "datasets", "school.yaml")

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "summary: no teacher", args: []string{"summary"}, wantErr: errHelp},
		{name: "summary: unknown teacher", args: []string{"summary", "-teacher", "lol"}, wantErr: workload.ErrTeacherNotFound},
		{name: "summary", args: []string{"summary", "-teacher", "t-amina"}, wantOut: []string{`"load_percentage": 75`, `"total_hours": 18`}},
		{name: "plan: invalid scope", args: []string{"plan", "-scope", "lol"}, wantErr: workload.ErrInvalidScope},
		{name: "plan: unknown check", args: []string{"plan", "-scope", "selected", "-check", "lol"}, wantErr: workload.ErrTeacherNotFound},
		{name: "plan: nothing checked", args: []string{"plan", "-scope", "selected"}, wantErr: &workload.EmptyScopeError{Scope: workload.ScopeSelected}},
		{
			name:    "plan: checked",
			args:    []string{"plan", "-scope", "selected", "-check", "t-amina, t-chadia"},
			wantOut: []string{`"teacher_count": 2`, `"total_hours": 22`},
		},
		{
			name:    "export: table",
			args:    []string{"export", "-scope", "current", "-focus", "t-badr"},
			wantOut: []string{"t-badr,Badr,Physics,0,0.00,20.00,0.00\n", "generated_at,2026-09-01T08:00:00Z\n"},
		},
		{name: "export: invalid format", args: []string{"export", "-scope", "all", "-format", "pdf"}, wantErr: bulk.ErrInvalidFormat},
		{
			name:       "delete: current",
			args:       []string{"delete", "-scope", "current", "-focus", "t-amina"},
			wantOut:    []string{"deleted 2 assignment(s) of 1 teacher(s)\n"},
			wantNotOut: []string{"t-chadia"},
		},
		{
			name:    "window",
			args:    []string{"window", "-check", "t-badr"},
			wantOut: []string{"rows 0-2 of 3 (total height 192px, scroll 0px)\n", "[ ]    0      0px  t-amina  Amina\n", "[x]    1     64px  t-badr  Badr\n"},
		},
		{
			name:    "window: scrolled past the end",
			args:    []string{"window", "-scroll", "1000"},
			wantOut: []string{"rows 1-3 of 3 (total height 192px, scroll 64px)\n"},
		},
		{
			name:    "window: search",
			args:    []string{"window", "-search", "arabic"},
			wantOut: []string{"rows 0-1 of 1", "t-chadia"},
		},
		{
			name:    "window: demo dataset",
			args:    []string{"window", "-dataset", demo},
			wantOut: []string{"rows 0-2 of 4", "t-amina  Amina Benali\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out, _ := setup(t)
			err := cli.run(testutil.Context(), append([]string{"planner"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, notWant := range tt.wantNotOut {
				assert.NotContains(t, out.String(), notWant)
			}
		})
	}
}

func Test_commandLine_share(t *testing.T) {
	cli, _, share := setup(t)
	err := cli.run(testutil.Context(), []string{"planner", "share", "-scope", "all", "-to", "+212600000000, +212611111111"})
	require.NoError(t, err)

	sent := share.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"+212600000000", "+212611111111"}, sent[0].To)
	assert.Equal(t, "Teaching workload plan (3 teachers)", sent[0].Subject)
}

func Test_commandLine_exportFile(t *testing.T) {
	cli, out, _ := setup(t)
	path := filepath.Join(t.TempDir(), "plan.html")

	err := cli.run(testutil.Context(), []string{"planner", "export", "-scope", "all", "-format", "print", "-o", path})
	require.NoError(t, err)
	assert.Equal(t, path+" written (3 teachers)\n", out.String())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<html")
}
