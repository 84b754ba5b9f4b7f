// Package memory is an in-process implementation of every repository. All
// operations are serialized; a transaction holds the lock for its whole
// duration and restores a snapshot when it fails.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

const dateKey = "2006-01-02"

type refreshToken struct {
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type weekKey struct {
	UserID  string
	ISOYear int
	ISOWeek int
}

type monthKey struct {
	UserID string
	Year   int
	Month  int
}

type state struct {
	users           map[string]user.User
	locations       map[string]location.Location
	tokens          map[string]refreshToken
	attendances     map[string]attendance.Attendance
	breaks          map[string]attendance.Break
	corrections     map[string]request.CorrectionRequest
	overtimes       map[string]request.OvertimeRequest
	holidayRequests map[string]request.HolidayRequest
	scheduleDays    map[string]request.ScheduleDay
	companyHolidays map[string]holiday.CompanyHoliday
	weekly          map[weekKey]summary.WeeklySummary
	monthly         map[monthKey]summary.MonthlySummary
}

func newState() *state {
	return &state{
		users:           make(map[string]user.User),
		locations:       make(map[string]location.Location),
		tokens:          make(map[string]refreshToken),
		attendances:     make(map[string]attendance.Attendance),
		breaks:          make(map[string]attendance.Break),
		corrections:     make(map[string]request.CorrectionRequest),
		overtimes:       make(map[string]request.OvertimeRequest),
		holidayRequests: make(map[string]request.HolidayRequest),
		scheduleDays:    make(map[string]request.ScheduleDay),
		companyHolidays: make(map[string]holiday.CompanyHoliday),
		weekly:          make(map[weekKey]summary.WeeklySummary),
		monthly:         make(map[monthKey]summary.MonthlySummary),
	}
}

// clone copies every table. Stored values are never mutated through their
// pointer fields, so copying the maps is enough.
func (st *state) clone() *state {
	return &state{
		users:           maps.Clone(st.users),
		locations:       maps.Clone(st.locations),
		tokens:          maps.Clone(st.tokens),
		attendances:     maps.Clone(st.attendances),
		breaks:          maps.Clone(st.breaks),
		corrections:     maps.Clone(st.corrections),
		overtimes:       maps.Clone(st.overtimes),
		holidayRequests: maps.Clone(st.holidayRequests),
		scheduleDays:    maps.Clone(st.scheduleDays),
		companyHolidays: maps.Clone(st.companyHolidays),
		weekly:          maps.Clone(st.weekly),
		monthly:         maps.Clone(st.monthly),
	}
}

type txKey struct{}

// Store holds all tables.
type Store struct {
	mu    sync.Mutex
	st    *state
	clock clock.Clock
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{st: newState(), clock: clk}
}

var _ database.Transactor = (*Store)(nil)

// WithinTransaction runs fn under the store lock. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock serializes a single operation unless ctx already holds the store.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func sameDate(a, b time.Time) bool {
	return a.Format(dateKey) == b.Format(dateKey)
}

// within reports from <= d <= to by calendar date.
func within(d, from, to time.Time) bool {
	key := d.Format(dateKey)
	return key >= from.Format(dateKey) && key <= to.Format(dateKey)
}
