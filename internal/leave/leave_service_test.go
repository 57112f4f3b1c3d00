package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/domain"
	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/ledger"
	"go-leaveflow/internal/policy"
	"go-leaveflow/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn        func(ctx context.Context, l *LeaveRequest) error
	findByIDFn      func(ctx context.Context, id string) (*LeaveRequest, error)
	listFn          func(ctx context.Context, f ListFilter) ([]LeaveRequest, int64, error)
	hasOverlapFn    func(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	hasDuplicateFn  func(ctx context.Context, userID string, startDate, endDate time.Time) (bool, error)
	updatePendingFn func(ctx context.Context, l *LeaveRequest, entry AuditEntry) (bool, error)
	transitionFn    func(ctx context.Context, t StatusTransition) (bool, error)
	revertFn        func(ctx context.Context, id, currentStatus, previousStatus string) (bool, error)
}

func (f *fakeRepo) Create(ctx context.Context, l *LeaveRequest) error { return f.createFn(ctx, l) }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) List(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
	return f.listFn(ctx, lf)
}
func (f *fakeRepo) HasOverlappingPeriod(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	return f.hasOverlapFn(ctx, userID, startDate, endDate, excludeID)
}
func (f *fakeRepo) HasDuplicatePending(ctx context.Context, userID string, startDate, endDate time.Time) (bool, error) {
	return f.hasDuplicateFn(ctx, userID, startDate, endDate)
}
func (f *fakeRepo) UpdatePending(ctx context.Context, l *LeaveRequest, entry AuditEntry) (bool, error) {
	return f.updatePendingFn(ctx, l, entry)
}
func (f *fakeRepo) TransitionStatus(ctx context.Context, t StatusTransition) (bool, error) {
	return f.transitionFn(ctx, t)
}
func (f *fakeRepo) RevertTransition(ctx context.Context, id, currentStatus, previousStatus string) (bool, error) {
	return f.revertFn(ctx, id, currentStatus, previousStatus)
}

type fakeLedger struct {
	checkFn  func(ctx context.Context, userID, leaveType string, days float64) (ledger.Balance, error)
	debitFn  func(ctx context.Context, userID, leaveType string, days float64) (bool, error)
	creditFn func(ctx context.Context, userID, leaveType string, days float64) (bool, error)
}

func (f *fakeLedger) Check(ctx context.Context, userID, leaveType string, days float64) (ledger.Balance, error) {
	return f.checkFn(ctx, userID, leaveType, days)
}
func (f *fakeLedger) Debit(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
	return f.debitFn(ctx, userID, leaveType, days)
}
func (f *fakeLedger) Credit(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
	return f.creditFn(ctx, userID, leaveType, days)
}

type fakeDirectory struct {
	managerOfFn func(ctx context.Context, userID string) (*string, error)
	teamFn      func(ctx context.Context, managerID string) ([]string, error)
}

func (f *fakeDirectory) ManagerOf(ctx context.Context, userID string) (*string, error) {
	return f.managerOfFn(ctx, userID)
}
func (f *fakeDirectory) TeamMemberIDs(ctx context.Context, managerID string) ([]string, error) {
	return f.teamFn(ctx, managerID)
}

type fakePolicies struct {
	ruleFn func(ctx context.Context, leaveType string) (policy.Rule, error)
}

func (f *fakePolicies) Rule(ctx context.Context, leaveType string) (policy.Rule, error) {
	return f.ruleFn(ctx, leaveType)
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

func (f *fakeRecorder) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	repo      *fakeRepo
	ledger    *fakeLedger
	directory *fakeDirectory
	policies  *fakePolicies
	recorder  *fakeRecorder
	service   Service
}

// newFixture wires a service over benign fakes; tests override what the
// scenario needs.
func newFixture() *fixture {
	f := &fixture{
		repo:      &fakeRepo{},
		ledger:    &fakeLedger{},
		directory: &fakeDirectory{},
		policies:  &fakePolicies{},
		recorder:  &fakeRecorder{},
	}

	f.repo.createFn = func(ctx context.Context, l *LeaveRequest) error { return nil }
	f.repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return nil, gorm.ErrRecordNotFound
	}
	f.repo.listFn = func(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
		return nil, 0, nil
	}
	f.repo.hasOverlapFn = func(ctx context.Context, userID string, s, e time.Time, ex *string) (bool, error) {
		return false, nil
	}
	f.repo.hasDuplicateFn = func(ctx context.Context, userID string, s, e time.Time) (bool, error) {
		return false, nil
	}
	f.repo.updatePendingFn = func(ctx context.Context, l *LeaveRequest, entry AuditEntry) (bool, error) {
		return true, nil
	}
	f.repo.transitionFn = func(ctx context.Context, t StatusTransition) (bool, error) { return true, nil }
	f.repo.revertFn = func(ctx context.Context, id, cur, prev string) (bool, error) { return true, nil }

	f.ledger.checkFn = func(ctx context.Context, userID, leaveType string, days float64) (ledger.Balance, error) {
		return ledger.Balance{Sufficient: true, Available: 10}, nil
	}
	f.ledger.debitFn = func(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
		return true, nil
	}
	f.ledger.creditFn = func(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
		return true, nil
	}

	f.directory.managerOfFn = func(ctx context.Context, userID string) (*string, error) { return nil, nil }
	f.directory.teamFn = func(ctx context.Context, managerID string) ([]string, error) { return nil, nil }

	f.policies.ruleFn = func(ctx context.Context, leaveType string) (policy.Rule, error) {
		return policy.Rule{}, nil
	}

	f.service = NewService(f.repo, f.ledger, f.directory, f.policies, f.recorder)
	return f
}

// tracked keeps the persisted row in sync with repo writes so reloads after
// a transition observe the new status.
func (f *fixture) track(l *LeaveRequest) {
	f.repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		if id != l.ID.String() {
			return nil, gorm.ErrRecordNotFound
		}
		copied := *l
		return &copied, nil
	}
	f.repo.transitionFn = func(ctx context.Context, t StatusTransition) (bool, error) {
		if l.Status != t.ExpectedStatus {
			return false, nil
		}
		l.Status = t.NewStatus
		l.AuditTrail = append(l.AuditTrail, t.Entry)
		return true, nil
	}
	f.repo.revertFn = func(ctx context.Context, id, cur, prev string) (bool, error) {
		if l.Status != cur {
			return false, nil
		}
		l.Status = prev
		l.AuditTrail = l.AuditTrail[:len(l.AuditTrail)-1]
		return true, nil
	}
}

func pendingLeave(userID, managerID string) *LeaveRequest {
	uid := uuid.MustParse(userID)
	l := &LeaveRequest{
		ID:        uuid.New(),
		UserID:    uid,
		LeaveType: domain.LeaveCasual,
		StartDate: date("2025-03-10"),
		EndDate:   date("2025-03-12"),
		TotalDays: 3,
		Reason:    "family visit",
		Status:    StatusPending,
		AuditTrail: AuditTrail{
			{Action: TrailCreated, By: userID, At: time.Now().UTC()},
		},
	}
	if managerID != "" {
		mid := uuid.MustParse(managerID)
		l.ManagerID = &mid
	}
	return l
}

func date(v string) time.Time {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		panic(err)
	}
	return t
}

func TestService_Create(t *testing.T) {
	userID := uuid.NewString()
	managerID := uuid.NewString()
	actor := Actor{ID: userID, Role: domain.RoleEmployee}
	ctx := context.Background()

	baseReq := CreateLeaveRequest{
		LeaveType: domain.LeaveCasual,
		StartDate: "2025-03-10",
		EndDate:   "2025-03-12",
		Reason:    "family visit",
	}

	t.Run("success records trail and manager snapshot", func(t *testing.T) {
		f := newFixture()
		f.directory.managerOfFn = func(ctx context.Context, id string) (*string, error) {
			return &managerID, nil
		}

		var saved LeaveRequest
		f.repo.createFn = func(ctx context.Context, l *LeaveRequest) error { saved = *l; return nil }

		resp, err := f.service.Create(ctx, actor, baseReq)
		assert.NoError(t, err)
		assert.Equal(t, StatusPending, resp.Status)
		assert.Equal(t, 3.0, resp.TotalDays)
		assert.Equal(t, managerID, saved.ManagerID.String())
		assert.Len(t, saved.AuditTrail, 1)
		assert.Equal(t, TrailCreated, saved.AuditTrail[0].Action)
		assert.Equal(t, userID, saved.AuditTrail[0].By)
		assert.Equal(t, []string{audit.ActionLeaveCreated}, f.recorder.actions())
	})

	t.Run("business days only skips the weekend", func(t *testing.T) {
		f := newFixture()
		f.policies.ruleFn = func(ctx context.Context, leaveType string) (policy.Rule, error) {
			return policy.Rule{BusinessDaysOnly: true}, nil
		}

		req := baseReq
		req.StartDate = "2025-03-07" // Friday
		req.EndDate = "2025-03-10"   // Monday

		resp, err := f.service.Create(ctx, actor, req)
		assert.NoError(t, err)
		assert.Equal(t, 2.0, resp.TotalDays)
	})

	t.Run("half day on a single date charges half", func(t *testing.T) {
		f := newFixture()

		req := baseReq
		req.EndDate = req.StartDate
		req.HalfDay = true

		resp, err := f.service.Create(ctx, actor, req)
		assert.NoError(t, err)
		assert.Equal(t, 0.5, resp.TotalDays)
	})

	t.Run("half day spanning multiple dates is rejected", func(t *testing.T) {
		f := newFixture()

		req := baseReq
		req.HalfDay = true

		_, err := f.service.Create(ctx, actor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrHalfDayRange)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		f := newFixture()

		req := baseReq
		req.StartDate = "2025-03-12"
		req.EndDate = "2025-03-10"

		_, err := f.service.Create(ctx, actor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("overlap with existing request is rejected", func(t *testing.T) {
		f := newFixture()
		f.repo.hasOverlapFn = func(ctx context.Context, userID string, s, e time.Time, ex *string) (bool, error) {
			return true, nil
		}

		_, err := f.service.Create(ctx, actor, baseReq)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
	})

	t.Run("insufficient balance is rejected with details", func(t *testing.T) {
		f := newFixture()
		f.ledger.checkFn = func(ctx context.Context, userID, leaveType string, days float64) (ledger.Balance, error) {
			return ledger.Balance{Sufficient: false, Available: 1.5}, nil
		}

		_, err := f.service.Create(ctx, actor, baseReq)
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("unpaid leave skips the balance check", func(t *testing.T) {
		f := newFixture()
		f.ledger.checkFn = func(ctx context.Context, userID, leaveType string, days float64) (ledger.Balance, error) {
			t.Fatal("balance check must not run for unpaid leave")
			return ledger.Balance{}, nil
		}

		req := baseReq
		req.LeaveType = domain.LeaveUnpaid

		_, err := f.service.Create(ctx, actor, req)
		assert.NoError(t, err)
	})

	t.Run("duplicate pending request is rejected", func(t *testing.T) {
		f := newFixture()
		f.repo.hasDuplicateFn = func(ctx context.Context, userID string, s, e time.Time) (bool, error) {
			return true, nil
		}

		_, err := f.service.Create(ctx, actor, baseReq)
		assert.ErrorIs(t, err, leaveerrors.ErrDuplicatePending)
	})

	t.Run("missing document is rejected when policy requires one", func(t *testing.T) {
		f := newFixture()
		f.policies.ruleFn = func(ctx context.Context, leaveType string) (policy.Rule, error) {
			return policy.Rule{RequiresDocument: true}, nil
		}

		req := baseReq
		req.LeaveType = domain.LeaveSick

		_, err := f.service.Create(ctx, actor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrAttachmentRequired)
	})
}

func TestService_Update(t *testing.T) {
	userID := uuid.NewString()
	ctx := context.Background()
	actor := Actor{ID: userID, Role: domain.RoleEmployee}

	t.Run("owner edits a pending request", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		f.track(l)

		var savedEntry AuditEntry
		f.repo.updatePendingFn = func(ctx context.Context, u *LeaveRequest, entry AuditEntry) (bool, error) {
			*l = *u
			savedEntry = entry
			return true, nil
		}

		newEnd := "2025-03-13"
		resp, err := f.service.Update(ctx, actor, l.ID.String(), UpdateLeaveRequest{EndDate: &newEnd})
		assert.NoError(t, err)
		assert.Equal(t, 4.0, resp.TotalDays)
		assert.Equal(t, TrailUpdated, savedEntry.Action)
		assert.Equal(t, []string{audit.ActionLeaveUpdated}, f.recorder.actions())
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(uuid.NewString(), "")
		f.track(l)

		_, err := f.service.Update(ctx, actor, l.ID.String(), UpdateLeaveRequest{})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("approved request is not editable", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusApproved
		f.track(l)

		_, err := f.service.Update(ctx, actor, l.ID.String(), UpdateLeaveRequest{})
		assert.ErrorIs(t, err, leaveerrors.ErrNotEditable)
	})

	t.Run("concurrent decision surfaces as not editable", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		f.track(l)
		f.repo.updatePendingFn = func(ctx context.Context, u *LeaveRequest, entry AuditEntry) (bool, error) {
			return false, nil
		}

		_, err := f.service.Update(ctx, actor, l.ID.String(), UpdateLeaveRequest{})
		assert.ErrorIs(t, err, leaveerrors.ErrNotEditable)
	})
}

func TestService_Cancel(t *testing.T) {
	userID := uuid.NewString()
	ctx := context.Background()
	actor := Actor{ID: userID, Role: domain.RoleEmployee}

	t.Run("owner cancels a pending request", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		f.track(l)

		resp, err := f.service.Cancel(ctx, actor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, StatusCanceled, resp.Status)
		assert.Equal(t, TrailCancelled, l.AuditTrail[len(l.AuditTrail)-1].Action)
	})

	t.Run("terminal request is not cancellable", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusRejected
		f.track(l)

		_, err := f.service.Cancel(ctx, actor, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrNotCancellable)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Cancel(ctx, actor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestService_Approve(t *testing.T) {
	userID := uuid.NewString()
	managerID := uuid.NewString()
	ctx := context.Background()
	manager := Actor{ID: managerID, Role: domain.RoleManager}

	t.Run("manager approves and the balance is debited", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		var debited float64
		f.ledger.debitFn = func(ctx context.Context, uid, leaveType string, days float64) (bool, error) {
			assert.Equal(t, userID, uid)
			debited = days
			return true, nil
		}

		resp, err := f.service.Approve(ctx, manager, l.ID.String(), "enjoy")
		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Equal(t, 3.0, debited)
		assert.Equal(t, TrailApproved, l.AuditTrail[len(l.AuditTrail)-1].Action)
		assert.Equal(t, []string{audit.ActionLeaveApproved}, f.recorder.actions())
	})

	t.Run("debit failure rolls the status back", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		f.ledger.debitFn = func(ctx context.Context, uid, leaveType string, days float64) (bool, error) {
			return false, nil
		}
		f.ledger.checkFn = func(ctx context.Context, uid, leaveType string, days float64) (ledger.Balance, error) {
			return ledger.Balance{Sufficient: true, Available: 1}, nil
		}

		_, err := f.service.Approve(ctx, manager, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		// Compensating write restored the pending state and dropped the entry.
		assert.Equal(t, StatusPending, l.Status)
		assert.Equal(t, TrailCreated, l.AuditTrail[len(l.AuditTrail)-1].Action)
		assert.Empty(t, f.recorder.actions())
	})

	t.Run("already decided request reports its status", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		l.Status = StatusApproved
		f.track(l)

		_, err := f.service.Approve(ctx, manager, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
	})

	t.Run("lost compare-and-set race reports already processed", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)
		f.repo.transitionFn = func(ctx context.Context, tr StatusTransition) (bool, error) {
			return false, nil
		}

		_, err := f.service.Approve(ctx, manager, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
	})

	t.Run("manager outside the snapshot is rejected", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, uuid.NewString())
		f.track(l)

		_, err := f.service.Approve(ctx, manager, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrNotTeamMember)
	})

	t.Run("overlap grown since submission blocks approval", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)
		f.repo.hasOverlapFn = func(ctx context.Context, uid string, s, e time.Time, ex *string) (bool, error) {
			assert.NotNil(t, ex)
			return true, nil
		}

		_, err := f.service.Approve(ctx, manager, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Equal(t, StatusPending, l.Status)
	})

	t.Run("hr approval stores the hr comment", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		var got StatusTransition
		inner := f.repo.transitionFn
		f.repo.transitionFn = func(ctx context.Context, tr StatusTransition) (bool, error) {
			got = tr
			return inner(ctx, tr)
		}

		_, err := f.service.Approve(ctx, Actor{ID: uuid.NewString(), Role: domain.RoleHR}, l.ID.String(), "ok")
		assert.NoError(t, err)
		assert.Nil(t, got.ManagerComment)
		if assert.NotNil(t, got.HRComment) {
			assert.Equal(t, "ok", *got.HRComment)
		}
	})
}

func TestService_Reject(t *testing.T) {
	userID := uuid.NewString()
	managerID := uuid.NewString()
	ctx := context.Background()
	manager := Actor{ID: managerID, Role: domain.RoleManager}

	t.Run("manager rejects without touching the ledger", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		f.ledger.debitFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			t.Fatal("reject must not debit")
			return false, nil
		}
		f.ledger.creditFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			t.Fatal("reject must not credit")
			return false, nil
		}

		resp, err := f.service.Reject(ctx, manager, l.ID.String(), "short staffed")
		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, []string{audit.ActionLeaveRejected}, f.recorder.actions())
	})

	t.Run("employee cannot reject", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		_, err := f.service.Reject(ctx, Actor{ID: userID, Role: domain.RoleEmployee}, l.ID.String(), "")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestService_Override(t *testing.T) {
	userID := uuid.NewString()
	ctx := context.Background()
	hr := Actor{ID: uuid.NewString(), Role: domain.RoleHR}

	t.Run("approved to rejected credits the balance back", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusApproved
		f.track(l)

		var credited float64
		f.ledger.creditFn = func(ctx context.Context, uid, lt string, days float64) (bool, error) {
			credited = days
			return true, nil
		}

		resp, err := f.service.Override(ctx, hr, l.ID.String(), StatusRejected, "policy breach")
		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, 3.0, credited)
		assert.Equal(t, TrailOverridden, l.AuditTrail[len(l.AuditTrail)-1].Action)
		assert.Equal(t, []string{audit.ActionLeaveOverridden}, f.recorder.actions())
	})

	t.Run("a credit that did not apply is logged, not swallowed", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		f := newFixture()
		svc := NewService(f.repo, f.ledger, f.directory, f.policies, f.recorder, zap.New(core))
		l := pendingLeave(userID, "")
		l.Status = StatusApproved
		f.track(l)

		f.ledger.creditFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			return false, nil
		}

		resp, err := svc.Override(ctx, hr, l.ID.String(), StatusRejected, "policy breach")
		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, 1, logs.FilterMessage("override leave credit did not apply").Len())
	})

	t.Run("credit is compensated when the flip loses its race", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusApproved
		f.track(l)

		var credited, debited bool
		f.ledger.creditFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			credited = true
			return true, nil
		}
		f.ledger.debitFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			debited = true
			return true, nil
		}
		f.repo.transitionFn = func(ctx context.Context, tr StatusTransition) (bool, error) {
			return false, nil
		}

		_, err := f.service.Override(ctx, hr, l.ID.String(), StatusRejected, "x")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
		assert.True(t, credited)
		assert.True(t, debited)
	})

	t.Run("rejected to approved checks and debits", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusRejected
		f.track(l)

		var debited float64
		f.ledger.debitFn = func(ctx context.Context, uid, lt string, days float64) (bool, error) {
			debited = days
			return true, nil
		}

		resp, err := f.service.Override(ctx, hr, l.ID.String(), StatusApproved, "appeal accepted")
		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Equal(t, 3.0, debited)
	})

	t.Run("debit failure reverts to the previous status", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		l.Status = StatusRejected
		f.track(l)

		f.ledger.debitFn = func(ctx context.Context, uid, lt string, d float64) (bool, error) {
			return false, nil
		}

		_, err := f.service.Override(ctx, hr, l.ID.String(), StatusApproved, "x")
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Equal(t, StatusRejected, l.Status)
	})

	t.Run("pending request is not overridable", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, "")
		f.track(l)

		_, err := f.service.Override(ctx, hr, l.ID.String(), StatusApproved, "x")
		assert.ErrorIs(t, err, leaveerrors.ErrNotOverridable)
	})

	t.Run("non-hr is forbidden", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Override(ctx, Actor{ID: uuid.NewString(), Role: domain.RoleManager}, uuid.NewString(), StatusApproved, "x")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestService_BulkApprove(t *testing.T) {
	managerID := uuid.NewString()
	ctx := context.Background()
	manager := Actor{ID: managerID, Role: domain.RoleManager}

	t.Run("failures never abort the batch", func(t *testing.T) {
		f := newFixture()

		ok := pendingLeave(uuid.NewString(), managerID)
		decided := pendingLeave(uuid.NewString(), managerID)
		decided.Status = StatusRejected
		rows := map[string]*LeaveRequest{
			ok.ID.String():      ok,
			decided.ID.String(): decided,
		}

		f.repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
			l, found := rows[id]
			if !found {
				return nil, gorm.ErrRecordNotFound
			}
			copied := *l
			return &copied, nil
		}
		f.repo.transitionFn = func(ctx context.Context, tr StatusTransition) (bool, error) {
			l := rows[tr.ID]
			if l.Status != tr.ExpectedStatus {
				return false, nil
			}
			l.Status = tr.NewStatus
			return true, nil
		}

		missing := uuid.NewString()
		result, err := f.service.BulkApprove(ctx, manager, []string{
			ok.ID.String(), decided.ID.String(), missing,
		}, "batch")
		assert.NoError(t, err)
		assert.Equal(t, []string{ok.ID.String()}, result.Approved)
		assert.Len(t, result.Failed, 2)
		assert.Equal(t, decided.ID.String(), result.Failed[0].LeaveID)
		assert.NotEmpty(t, result.Failed[0].Reason)
		assert.Equal(t, missing, result.Failed[1].LeaveID)
	})
}

func TestService_ListAndGet(t *testing.T) {
	userID := uuid.NewString()
	managerID := uuid.NewString()
	ctx := context.Background()

	t.Run("employee list is scoped to the requester", func(t *testing.T) {
		f := newFixture()

		var got ListFilter
		f.repo.listFn = func(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
			got = lf
			return nil, 0, nil
		}

		_, _, err := f.service.List(ctx, Actor{ID: userID, Role: domain.RoleEmployee}, ListQuery{Page: 1, PageSize: 10})
		assert.NoError(t, err)
		assert.Equal(t, []string{userID}, got.UserIDs)
	})

	t.Run("manager list covers the team", func(t *testing.T) {
		f := newFixture()
		team := []string{uuid.NewString(), uuid.NewString()}
		f.directory.teamFn = func(ctx context.Context, id string) ([]string, error) {
			assert.Equal(t, managerID, id)
			return team, nil
		}

		var got ListFilter
		f.repo.listFn = func(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
			got = lf
			return nil, 0, nil
		}

		_, _, err := f.service.List(ctx, Actor{ID: managerID, Role: domain.RoleManager}, ListQuery{Page: 1, PageSize: 10})
		assert.NoError(t, err)
		assert.Equal(t, team, got.UserIDs)
	})

	t.Run("manager with an empty team sees nothing, not everything", func(t *testing.T) {
		f := newFixture()
		f.directory.teamFn = func(ctx context.Context, id string) ([]string, error) {
			return nil, nil
		}

		var got ListFilter
		f.repo.listFn = func(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
			got = lf
			return nil, 0, nil
		}

		_, _, err := f.service.List(ctx, Actor{ID: managerID, Role: domain.RoleManager}, ListQuery{Page: 1, PageSize: 10})
		assert.NoError(t, err)
		// A nil id set is the unrestricted HR filter; an empty team must
		// scope the query to no rows at all.
		assert.NotNil(t, got.UserIDs)
		assert.Empty(t, got.UserIDs)
	})

	t.Run("manager cannot list outside the team", func(t *testing.T) {
		f := newFixture()
		f.directory.teamFn = func(ctx context.Context, id string) ([]string, error) {
			return []string{uuid.NewString()}, nil
		}

		_, _, err := f.service.List(ctx, Actor{ID: managerID, Role: domain.RoleManager}, ListQuery{UserID: uuid.NewString()})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("hr sees everything", func(t *testing.T) {
		f := newFixture()

		var got ListFilter
		f.repo.listFn = func(ctx context.Context, lf ListFilter) ([]LeaveRequest, int64, error) {
			got = lf
			return nil, 0, nil
		}

		_, _, err := f.service.List(ctx, Actor{ID: uuid.NewString(), Role: domain.RoleHR}, ListQuery{})
		assert.NoError(t, err)
		assert.Nil(t, got.UserIDs)
	})

	t.Run("get enforces record-level access", func(t *testing.T) {
		f := newFixture()
		l := pendingLeave(userID, managerID)
		f.track(l)

		_, err := f.service.GetByID(ctx, Actor{ID: userID, Role: domain.RoleEmployee}, l.ID.String())
		assert.NoError(t, err)

		_, err = f.service.GetByID(ctx, Actor{ID: managerID, Role: domain.RoleManager}, l.ID.String())
		assert.NoError(t, err)

		_, err = f.service.GetByID(ctx, Actor{ID: uuid.NewString(), Role: domain.RoleEmployee}, l.ID.String())
		assert.Error(t, err)
	})
}
