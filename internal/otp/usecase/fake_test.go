package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/jwt"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/otp"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/validator"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memDB is a ledger and policy store whose conditional transition is atomic
// under a single mutex, like a row-level conditional UPDATE.
type memDB struct {
	mu     sync.Mutex
	seq    int64
	recs   map[int64]entity.Record
	policy *entity.Policy

	insertErr     error
	findErr       error
	scanErr       error
	transitionErr map[int64]error
	// onTransition runs under no lock before the conditional write.
	onTransition func(id int64)
}

func newMemDB() *memDB {
	p := entity.DefaultPolicy()
	return &memDB{recs: map[int64]entity.Record{}, policy: &p, transitionErr: map[int64]error{}}
}

func (m *memDB) InsertRecord(_ context.Context, rec entity.Record) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return entity.Record{}, m.insertErr
	}
	m.seq++
	rec.ID = m.seq
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memDB) FindCandidate(_ context.Context, code, operationID string) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var best *entity.Record
	for _, r := range m.recs {
		if r.Code != code || r.OperationID != operationID {
			continue
		}
		switch {
		case best == nil:
			best = &r
		case (r.Status == entity.StatusActive) != (best.Status == entity.StatusActive):
			if r.Status == entity.StatusActive {
				best = &r
			}
		case r.ID > best.ID:
			best = &r
		}
	}
	if best == nil {
		return nil, goerror.ErrNotFound
	}
	return best, nil
}

func (m *memDB) TransitionIfStatus(_ context.Context, id int64, expected, next entity.Status) (bool, error) {
	if m.onTransition != nil {
		m.onTransition(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionErr[id]; err != nil {
		return false, err
	}
	r, ok := m.recs[id]
	if !ok || r.Status != expected {
		return false, nil
	}
	r.Status = next
	m.recs[id] = r
	return true, nil
}

func (m *memDB) ScanExpiredActive(_ context.Context, now time.Time, limit int) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []entity.Record
	for _, r := range m.recs {
		if r.Status == entity.StatusActive && r.ExpiresAt.Before(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDB) DeleteByOwner(_ context.Context, ownerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.recs {
		if r.OwnerID == ownerID {
			delete(m.recs, id)
			n++
		}
	}
	return n, nil
}

func (m *memDB) ListByOwner(_ context.Context, ownerID int64) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Record
	for _, r := range m.recs {
		if r.OwnerID == ownerID {
			r.Code = ""
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memDB) GetPolicy(context.Context) (*entity.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.policy == nil {
		return nil, goerror.ErrNotFound
	}
	p := *m.policy
	return &p, nil
}

func (m *memDB) UpdatePolicy(_ context.Context, p entity.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.policy == nil {
		return goerror.ErrNotFound
	}
	m.policy = &p
	return nil
}

func (m *memDB) record(id int64) entity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[id]
}

func (m *memDB) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

type dispatchCall struct {
	channel entity.Channel
	to      entity.Recipient
	code    string
}

type fakeChannel struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

func (f *fakeChannel) Dispatch(_ context.Context, ch entity.Channel, to entity.Recipient, code string) error {
	if _, ok := to.Address(ch); !ok {
		return entity.ErrMissingAddress
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatchCall{channel: ch, to: to, code: code})
	return f.err
}

// fakeLimiter keys failures by "<owner>:<operation>".
type fakeLimiter struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func limiterKey(owner int64, op string) string {
	return strconv.FormatInt(owner, 10) + ":" + op
}

func (f *fakeLimiter) Blocked(_ context.Context, owner int64, op string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[limiterKey(owner, op)] >= f.max, nil
}

func (f *fakeLimiter) RecordFailure(_ context.Context, owner int64, op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[limiterKey(owner, op)]++
	return nil
}

func (f *fakeLimiter) Reset(_ context.Context, owner int64, op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, limiterKey(owner, op))
	return nil
}

func (f *fakeLimiter) count(owner int64, op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[limiterKey(owner, op)]
}

type fakeMessaging struct {
	mu     sync.Mutex
	events map[eventKind][]LifecycleEvent
	err    error
}

func (f *fakeMessaging) add(k eventKind, ev LifecycleEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events == nil {
		f.events = map[eventKind][]LifecycleEvent{}
	}
	f.events[k] = append(f.events[k], ev)
	return f.err
}

func (f *fakeMessaging) PublishIssued(_ context.Context, ev LifecycleEvent) error {
	return f.add(eventIssued, ev)
}

func (f *fakeMessaging) PublishVerified(_ context.Context, ev LifecycleEvent) error {
	return f.add(eventVerified, ev)
}

func (f *fakeMessaging) PublishExpired(_ context.Context, ev LifecycleEvent) error {
	return f.add(eventExpired, ev)
}

func (f *fakeMessaging) count(k eventKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events[k])
}

type fakeIdempotency struct {
	mu   sync.Mutex
	done map[string]bool
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.done[key] {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[key] = true
	return nil
}

type fakeEnforcer map[string]bool

func (f fakeEnforcer) Enforce(rvals ...any) (bool, error) {
	if len(rvals) != 3 {
		return false, errBoom
	}
	sub, _ := rvals[0].(string)
	obj, _ := rvals[1].(string)
	act, _ := rvals[2].(string)
	return f[sub+"|"+obj+"|"+act] || f[sub+"|*|*"], nil
}

type fixture struct {
	uc        *Usecase
	db        *memDB
	clock     *fakeClock
	channel   *fakeChannel
	limiter   *fakeLimiter
	messaging *fakeMessaging
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{
		db:        newMemDB(),
		clock:     newFakeClock(),
		channel:   &fakeChannel{},
		limiter:   &fakeLimiter{failures: map[string]int{}, max: 5},
		messaging: &fakeMessaging{},
	}
	f.uc = NewOTP(Dependency{
		RepoDB:        f.db,
		RepoChannel:   f.channel,
		RepoLimiter:   f.limiter,
		RepoMessaging: f.messaging,
		Idempotency:   &fakeIdempotency{done: map[string]bool{}},
		Enforcer:      fakeEnforcer{"admin|*|*": true},
		Generator:     otp.NewNumeric(),
		Clock:         f.clock,
		Validator:     v,
		Instrument:    instrument.NewNoop(),
	})
	return f
}

func userCtx(id int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: id, Role: "user"})
}

func adminCtx() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 1, Role: "admin"})
}

// issueFile issues through the file channel so the code is echoed back.
func (f *fixture) issueFile(t *testing.T, owner int64, op string) entity.Record {
	t.Helper()
	out, err := f.uc.Issue(userCtx(owner), IssueInput{OperationID: op, Channel: "file"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return out.Record
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a goerror", err)
	}
	return gerr.StatusCode()
}
