package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/apps/shared"
	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/listview"
	"github.com/trezcool/ratiba/core/workload"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	deps     *shared.Deps
	bulk     *bulk.Service
	renderer *listview.Renderer
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  summary -teacher ID                            - print the workload of one teacher")
	_, _ = fmt.Fprintln(cli.out, "  plan    -scope SCOPE                           - print the plan summary of a scope")
	_, _ = fmt.Fprintln(cli.out, "  export  -scope SCOPE -format FORMAT [-o FILE]  - render the plan as table, share or print")
	_, _ = fmt.Fprintln(cli.out, "  share   -scope SCOPE -to R1,R2                 - share the plan digest")
	_, _ = fmt.Fprintln(cli.out, "  delete  -scope SCOPE                           - delete the assignments of a scope")
	_, _ = fmt.Fprintln(cli.out, "  window  [-scroll PX]                           - print the visible rows of the teacher list")
	_, _ = fmt.Fprintln(cli.out, "Every command accepts -dataset FILE, -focus ID, -check ID1,ID2, -search TERM and -level LEVEL.")
}

// stateFlags rebuild the UI state of a session before running a command.
type stateFlags struct {
	dataset string
	focus   string
	check   string
	search  string
	level   string
}

func newFlagSet(name string) (*flag.FlagSet, *stateFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	st := new(stateFlags)
	fs.StringVar(&st.dataset, "dataset", "", "Dataset file (.yaml|.json) to load first.")
	fs.StringVar(&st.focus, "focus", "", "Id of the focused teacher (scope current).")
	fs.StringVar(&st.check, "check", "", "Comma separated ids of the checked teachers (scope selected).")
	fs.StringVar(&st.search, "search", "", "Search filter on name or specialization.")
	fs.StringVar(&st.level, "level", "", "Classroom level filter.")
	return fs, st
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (cli *commandLine) applyState(ctx context.Context, st *stateFlags) error {
	if st.dataset != "" {
		if err := cli.deps.LoadDataset(ctx, st.dataset); err != nil {
			return err
		}
	}
	store := cli.deps.Store
	store.SetFilters(workload.Filters{Search: st.search, Level: st.level})
	if st.focus != "" {
		if err := store.SelectTeacher(ctx, st.focus); err != nil {
			return errors.Wrapf(err, "focusing %q", st.focus)
		}
	}
	for _, id := range splitList(st.check) {
		if _, err := store.ToggleTeacherSelection(ctx, id); err != nil {
			return errors.Wrapf(err, "checking %q", id)
		}
	}
	return nil
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	fs, st := newFlagSet(args[1])
	fs.SetOutput(cli.out)
	var (
		teacherID = fs.String("teacher", "", "Teacher id.")
		scopeArg  = fs.String("scope", "", "One of current, selected or all.")
		formatArg = fs.String("format", string(bulk.FormatTable), "One of table, share or print.")
		outPath   = fs.String("o", "", "Output file (stdout when empty).")
		to        = fs.String("to", "", "Comma separated recipients.")
		scrollTop = fs.Int("scroll", 0, "Scroll offset in pixels.")
	)

	switch args[1] {
	case "summary", "plan", "export", "share", "delete", "window":
	default:
		cli.printUsage()
		return errHelp
	}
	if err := fs.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	if err := cli.applyState(ctx, st); err != nil {
		return err
	}

	if args[1] == "summary" {
		if *teacherID == "" {
			fs.Usage()
			return errHelp
		}
		return cli.summary(ctx, *teacherID)
	}
	if args[1] == "window" {
		return cli.window(ctx, *scrollTop)
	}

	scope, err := workload.ParseScope(*scopeArg)
	if err != nil {
		return err
	}
	switch args[1] {
	case "plan":
		plan, err := cli.bulk.Plan(ctx, scope)
		if err != nil {
			return err
		}
		return cli.printJSON(plan)
	case "export":
		return cli.export(ctx, scope, bulk.Format(*formatArg), *outPath)
	case "share":
		return cli.bulk.Share(ctx, scope, splitList(*to)...)
	default: // delete
		res, err := cli.bulk.DeleteAssignments(ctx, scope)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cli.out, "deleted %d assignment(s) of %d teacher(s)\n", res.Deleted, len(res.TeacherIDs))
		return err
	}
}

func (cli *commandLine) summary(ctx context.Context, teacherID string) error {
	snap, err := cli.deps.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	sum := cli.deps.Selectors.SummaryForTeacher(snap, teacherID)
	if sum == nil {
		return workload.ErrTeacherNotFound
	}
	return cli.printJSON(sum)
}

func (cli *commandLine) export(ctx context.Context, scope workload.Scope, format bulk.Format, outPath string) error {
	exp, err := cli.bulk.Export(ctx, scope, format)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = cli.out.Write(exp.Body)
		return err
	}
	if err = os.WriteFile(outPath, exp.Body, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "%s written (%d teachers)\n", outPath, exp.Plan.TeacherCount)
	return err
}

func (cli *commandLine) window(ctx context.Context, scrollTop int) error {
	snap, err := cli.deps.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(snap.Teachers))
	for _, t := range snap.Teachers {
		names[t.ID] = t.Name
	}
	ids := cli.deps.Selectors.FilterableTeachers(snap)
	nav := cli.renderer.NewNavigator(ids)
	nav.Scroll(scrollTop)
	win := nav.Visible()

	_, _ = fmt.Fprintf(cli.out, "rows %d-%d of %d (total height %dpx, scroll %dpx)\n",
		win.Start, win.End, len(ids), win.TotalHeight, nav.ScrollTop)
	for _, row := range win.Rows {
		id := ids[row.Index]
		check := " "
		if snap.IsSelected(id) {
			check = "x"
		}
		if _, err = fmt.Fprintf(cli.out, "[%s] %4d %6dpx  %s  %s\n", check, row.Index, row.Top, id, names[id]); err != nil {
			return err
		}
	}
	return nil
}
