// Package bulk runs scope-wide actions: plan reports, exports, share digests and deletes.
package bulk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
)

// Actions
const (
	ActionPlan       Action = "plan"
	ActionExport     Action = "export"
	ActionShare      Action = "share"
	ActionDelete     Action = "delete"
	ActionEditIntent Action = "edit_intent"
)

var ErrNoRecipients = errors.New("at least one recipient is required")

type Action string

type (
	// Store is the part of the workload store bulk actions need.
	Store interface {
		Snapshot(ctx context.Context) (workload.Snapshot, error)
		DeleteAssignmentsForTeachers(ctx context.Context, teacherIDs []string) (int, error)
	}

	// Event describes a completed (or refused) bulk action.
	Event struct {
		Action   Action
		Scope    workload.Scope
		Format   Format // exports only
		Teachers int
		Deleted  int // deletes only
		Err      error
	}

	// Observer is notified after every bulk action.
	Observer interface {
		ActionCompleted(ev Event)
	}

	DeleteResult struct {
		Scope      workload.Scope `json:"scope"`
		TeacherIDs []string       `json:"teacher_ids"`
		Deleted    int            `json:"deleted"`
	}

	// EditIntent is handed to the bulk edit form: the teachers it applies to and their current workload.
	EditIntent struct {
		Scope      workload.Scope            `json:"scope"`
		TeacherIDs []string                  `json:"teacher_ids"`
		Summaries  []workload.TeacherSummary `json:"summaries"`
	}
)

type nopObserver struct{}

func (nopObserver) ActionCompleted(Event) {}

type Service struct {
	store    Store
	sel      *workload.Selectors
	shareSvc core.ShareService
	logger   core.Logger
	observer Observer

	Now func() time.Time // mockable
}

// NewService returns a Service. observer may be nil.
func NewService(store Store, sel *workload.Selectors, shareSvc core.ShareService, logger core.Logger, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		store:    store,
		sel:      sel,
		shareSvc: shareSvc,
		logger:   logger,
		observer: observer,
		Now:      time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.Now().UTC() }

func (svc *Service) done(ev Event) {
	if ev.Err != nil && !workload.IsEmptyScope(ev.Err) {
		svc.logger.Error("bulk action failed", ev.Err, map[string]interface{}{"action": ev.Action, "scope": ev.Scope})
	}
	svc.observer.ActionCompleted(ev)
}

// resolve snapshots the store and resolves scope. The snapshot is returned for the selectors to reuse.
func (svc *Service) resolve(ctx context.Context, scope workload.Scope) (workload.Snapshot, []string, error) {
	snap, err := svc.store.Snapshot(ctx)
	if err != nil {
		return workload.Snapshot{}, nil, errors.Wrap(err, "taking snapshot")
	}
	ids, err := svc.sel.ResolveScope(snap, scope)
	if err != nil {
		return workload.Snapshot{}, nil, err
	}
	return snap, ids, nil
}

// Plan builds the plan summary of the teachers scope resolves to.
func (svc *Service) Plan(ctx context.Context, scope workload.Scope) (plan workload.PlanSummary, err error) {
	ev := Event{Action: ActionPlan, Scope: scope}
	defer func() {
		ev.Teachers, ev.Err = plan.TeacherCount, err
		svc.done(ev)
	}()

	snap, ids, err := svc.resolve(ctx, scope)
	if err != nil {
		return workload.PlanSummary{}, err
	}
	return svc.sel.PlanSummary(snap, ids...), nil
}

// Export renders the plan of scope in format.
func (svc *Service) Export(ctx context.Context, scope workload.Scope, format Format) (exp Export, err error) {
	ev := Event{Action: ActionExport, Scope: scope, Format: format}
	defer func() {
		ev.Teachers, ev.Err = exp.Plan.TeacherCount, err
		svc.done(ev)
	}()

	if format, err = ParseFormat(string(format)); err != nil {
		return Export{}, err
	}
	ev.Format = format
	snap, ids, err := svc.resolve(ctx, scope)
	if err != nil {
		return Export{}, err
	}
	plan := svc.sel.PlanSummary(snap, ids...)
	generatedAt := svc.now()
	body, err := Render(format, plan, generatedAt)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Format:      format,
		Scope:       scope,
		Filename:    fmt.Sprintf("workload-%s-%s%s", scope, generatedAt.Format("20060102-150405"), format.Ext()),
		Body:        body,
		Plan:        plan,
		GeneratedAt: generatedAt,
	}, nil
}

// Share renders the digest of scope and hands it to the share service.
func (svc *Service) Share(ctx context.Context, scope workload.Scope, recipients ...string) (err error) {
	ev := Event{Action: ActionShare, Scope: scope, Format: FormatShare}
	defer func() {
		ev.Err = err
		svc.done(ev)
	}()

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = core.CleanString(r); r != "" {
			to = append(to, r)
		}
	}
	if len(to) == 0 {
		return ErrNoRecipients
	}
	snap, ids, err := svc.resolve(ctx, scope)
	if err != nil {
		return err
	}
	plan := svc.sel.PlanSummary(snap, ids...)
	ev.Teachers = plan.TeacherCount
	body, err := RenderShare(plan, svc.now())
	if err != nil {
		return err
	}
	svc.shareSvc.Share(&core.ShareMessage{
		To:      to,
		Subject: fmt.Sprintf("%s (%d teachers)", reportTitle, plan.TeacherCount),
		Body:    string(body),
	})
	svc.logger.Info("plan shared", map[string]interface{}{"scope": scope, "recipients": strings.Join(to, ",")})
	return nil
}

// DeleteAssignments deletes every active assignment of the teachers scope resolves to, all or nothing.
func (svc *Service) DeleteAssignments(ctx context.Context, scope workload.Scope) (res DeleteResult, err error) {
	ev := Event{Action: ActionDelete, Scope: scope}
	defer func() {
		ev.Teachers, ev.Deleted, ev.Err = len(res.TeacherIDs), res.Deleted, err
		svc.done(ev)
	}()

	_, ids, err := svc.resolve(ctx, scope)
	if err != nil {
		return DeleteResult{}, err
	}
	n, err := svc.store.DeleteAssignmentsForTeachers(ctx, ids)
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "deleting assignments")
	}
	return DeleteResult{Scope: scope, TeacherIDs: ids, Deleted: n}, nil
}

// EditIntent resolves scope for the bulk edit form. Nothing is mutated.
func (svc *Service) EditIntent(ctx context.Context, scope workload.Scope) (intent EditIntent, err error) {
	ev := Event{Action: ActionEditIntent, Scope: scope}
	defer func() {
		ev.Teachers, ev.Err = len(intent.TeacherIDs), err
		svc.done(ev)
	}()

	snap, ids, err := svc.resolve(ctx, scope)
	if err != nil {
		return EditIntent{}, err
	}
	return EditIntent{
		Scope:      scope,
		TeacherIDs: ids,
		Summaries:  svc.sel.PlanSummary(snap, ids...).TeacherSummaries,
	}, nil
}
