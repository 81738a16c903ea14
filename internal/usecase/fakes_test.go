package usecase

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for PostgreSQL. One mutex plays the role
// of the row locks the real repositories take.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	sessions     map[uuid.UUID]*entity.Session
	box          *entity.Box
	classes      map[uuid.UUID]*entity.ClassSession
	reservations map[uuid.UUID]*entity.Reservation
	records      map[uuid.UUID]*entity.PersonalRecord

	failBulkNoShow bool
	failNoShowIDs  map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*entity.User{},
		sessions:      map[uuid.UUID]*entity.Session{},
		classes:       map[uuid.UUID]*entity.ClassSession{},
		reservations:  map[uuid.UUID]*entity.Reservation{},
		records:       map[uuid.UUID]*entity.PersonalRecord{},
		failNoShowIDs: map[uuid.UUID]bool{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:           memUsers{m},
		Session:        memSessions{m},
		Box:            memBox{m},
		Class:          memClasses{m},
		Reservation:    memReservations{m},
		PersonalRecord: memRecords{m},
	}
}

func copyReservation(r *entity.Reservation) *entity.Reservation {
	c := *r
	return &c
}

// ---------- users ----------

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertUserLocked(user)
}

func (m *memStore) insertUserLocked(user *entity.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func matchesFilter(u *entity.User, filter entity.MemberFilter) bool {
	if filter.Role != "" && u.Role != filter.Role {
		return false
	}
	if filter.Active != nil && u.EnrollmentActive != *filter.Active {
		return false
	}
	if filter.Plan != "" && (u.Plan == nil || *u.Plan != filter.Plan) {
		return false
	}
	return true
}

func (m memUsers) List(_ context.Context, filter entity.MemberFilter) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for _, u := range m.users {
		if !matchesFilter(u, filter) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m memUsers) Count(_ context.Context, filter entity.MemberFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if matchesFilter(u, filter) {
			n++
		}
	}
	return n, nil
}

func (m memUsers) CountByRole(_ context.Context, role entity.UserRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m memUsers) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m memUsers) DeleteCascade(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	for rid, r := range m.reservations {
		if r.UserID == id {
			delete(m.reservations, rid)
		}
	}
	for pid, p := range m.records {
		if p.UserID == id {
			delete(m.records, pid)
		}
	}
	for token, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, token)
		}
	}
	delete(m.users, id)
	return nil
}

// ---------- sessions ----------

type memSessions struct{ *memStore }

func (m memSessions) Create(_ context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *session
	m.sessions[session.Token] = &c
	return nil
}

func (m memSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.RevokedAt != nil || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m memSessions) Revoke(_ context.Context, token uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	s.RevokedAt = &now
	return true, nil
}

func (m memSessions) CleanExpiredSessions(context.Context) (int64, error) {
	return 0, nil
}

// ---------- box ----------

type memBox struct{ *memStore }

func (m memBox) Find(context.Context) (*entity.Box, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.box == nil {
		return nil, nil
	}
	c := *m.box
	return &c, nil
}

func (m memBox) Bootstrap(_ context.Context, box *entity.Box, owner *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.box != nil {
		return repository.ErrBoxExists
	}
	if err := m.insertUserLocked(owner); err != nil {
		return err
	}
	c := *box
	m.box = &c
	return nil
}

// ---------- classes ----------

type memClasses struct{ *memStore }

func (m memClasses) Create(_ context.Context, class *entity.ClassSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *class
	m.classes[class.ID] = &c
	return nil
}

func (m memClasses) FindByID(_ context.Context, id uuid.UUID) (*entity.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, nil
	}
	cc := *c
	return &cc, nil
}

func (m memClasses) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]*entity.ClassSession{}
	for _, id := range ids {
		if c, ok := m.classes[id]; ok {
			cc := *c
			out[id] = &cc
		}
	}
	return out, nil
}

func (m memClasses) ListByDate(_ context.Context, date string) ([]*entity.ClassSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.ClassSummary{}
	for _, c := range m.classes {
		if c.Date != date {
			continue
		}
		booked := 0
		for _, r := range m.reservations {
			if r.ClassID == c.ID {
				booked++
			}
		}
		out = append(out, &entity.ClassSummary{ClassSession: *c, Booked: booked})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (m memClasses) CountByDate(_ context.Context, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.classes {
		if c.Date == date {
			n++
		}
	}
	return n, nil
}

func (m memClasses) Update(_ context.Context, class *entity.ClassSession, scheduleChanged bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[class.ID]; !ok {
		return 0, repository.ErrNotFound
	}
	c := *class
	m.classes[class.ID] = &c
	if !scheduleChanged {
		return 0, nil
	}
	var n int64
	for _, r := range m.reservations {
		if r.ClassID == class.ID && r.Status == entity.ReservationBooked {
			date, clock := class.Date, class.Time
			r.ClassDate, r.ClassTime = &date, &clock
			n++
		}
	}
	return n, nil
}

func (m memClasses) DeleteCascade(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var n int64
	for rid, r := range m.reservations {
		if r.ClassID == id {
			delete(m.reservations, rid)
			n++
		}
	}
	delete(m.classes, id)
	return n, nil
}

// ---------- reservations ----------

type memReservations struct{ *memStore }

func (m memReservations) Reserve(_ context.Context, res *entity.Reservation, isActive repository.ActivePredicate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[res.UserID]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range m.reservations {
		if r.UserID == res.UserID && r.ClassID == res.ClassID {
			return repository.ErrDuplicateReservation
		}
	}
	for _, r := range m.reservations {
		if r.UserID == res.UserID && r.Status == entity.ReservationBooked && isActive(copyReservation(r)) {
			return repository.ErrActiveBookingExists
		}
	}
	class, ok := m.classes[res.ClassID]
	if !ok {
		return repository.ErrNotFound
	}
	count := 0
	for _, r := range m.reservations {
		if r.ClassID == res.ClassID {
			count++
		}
	}
	if count >= class.Capacity {
		return repository.ErrClassFull
	}

	date, clock := class.Date, class.Time
	res.ClassDate, res.ClassTime = &date, &clock
	m.reservations[res.ID] = copyReservation(res)
	return nil
}

func (m memReservations) FindByID(_ context.Context, id uuid.UUID) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	return copyReservation(r), nil
}

func (m memReservations) FindByUserAndClass(_ context.Context, userID, classID uuid.UUID) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.UserID == userID && r.ClassID == classID {
			return copyReservation(r), nil
		}
	}
	return nil, nil
}

func (m memReservations) CountByClass(_ context.Context, classID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.reservations {
		if r.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (m memReservations) ListBookedByUser(_ context.Context, userID uuid.UUID) ([]*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range m.reservations {
		if r.UserID == userID && r.Status == entity.ReservationBooked {
			out = append(out, copyReservation(r))
		}
	}
	return out, nil
}

func (m memReservations) ListByClass(_ context.Context, classID uuid.UUID) ([]*entity.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.RosterEntry{}
	for _, r := range m.reservations {
		if r.ClassID != classID {
			continue
		}
		entry := &entity.RosterEntry{Reservation: *r}
		if u, ok := m.users[r.UserID]; ok {
			entry.MemberName, entry.MemberEmail = u.Name, u.Email
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func historyLess(a, b *entity.Reservation) bool {
	if *a.ClassDate != *b.ClassDate {
		return *a.ClassDate > *b.ClassDate
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func (m memReservations) ListPastByUser(_ context.Context, userID uuid.UUID, today string, limit int, after *entity.HistoryCursor) ([]*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID || r.ClassDate == nil || *r.ClassDate > today {
			continue
		}
		if after != nil {
			cursor := &entity.Reservation{BaseSimple: entity.BaseSimple{ID: after.ID}, ClassDate: &after.ClassDate}
			if !historyLess(cursor, r) {
				continue
			}
		}
		out = append(out, copyReservation(r))
	}
	sort.Slice(out, func(i, j int) bool { return historyLess(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memReservations) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reservations[id]
	delete(m.reservations, id)
	return ok, nil
}

func (m memReservations) CheckIn(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != entity.ReservationBooked {
		return false, nil
	}
	r.Status = entity.ReservationCheckedIn
	r.CheckedInAt = &at
	return true, nil
}

func (m memReservations) ForceCheckIn(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return false, nil
	}
	r.Status = entity.ReservationCheckedIn
	r.CheckedInAt = &at
	return true, nil
}

func (m memReservations) ListNoShowCandidates(_ context.Context, today string, limit int) ([]*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range m.reservations {
		if r.Status == entity.ReservationBooked && r.ClassDate != nil && *r.ClassDate <= today {
			out = append(out, copyReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.ClassTime == nil) != (b.ClassTime == nil) {
			return b.ClassTime == nil
		}
		if *a.ClassDate != *b.ClassDate {
			return *a.ClassDate < *b.ClassDate
		}
		if a.ClassTime != nil && *a.ClassTime != *b.ClassTime {
			return *a.ClassTime < *b.ClassTime
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memReservations) MarkNoShow(_ context.Context, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBulkNoShow {
		return nil, errors.New("bulk update failed")
	}
	var marked []uuid.UUID
	for _, id := range ids {
		if r, ok := m.reservations[id]; ok && r.Status == entity.ReservationBooked {
			r.Status = entity.ReservationNoShow
			r.NoShowAt = &at
			marked = append(marked, id)
		}
	}
	return marked, nil
}

func (m memReservations) MarkNoShowOne(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNoShowIDs[id] {
		return false, errors.New("row update failed")
	}
	r, ok := m.reservations[id]
	if !ok || r.Status != entity.ReservationBooked {
		return false, nil
	}
	r.Status = entity.ReservationNoShow
	r.NoShowAt = &at
	return true, nil
}

// ---------- personal records ----------

type memRecords struct{ *memStore }

func (m memRecords) Create(_ context.Context, record *entity.PersonalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *record
	m.records[record.ID] = &c
	return nil
}

func (m memRecords) FindByID(_ context.Context, id uuid.UUID) (*entity.PersonalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (m memRecords) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.PersonalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.PersonalRecord{}
	for _, r := range m.records {
		if r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memRecords) Update(_ context.Context, record *entity.PersonalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *record
	m.records[record.ID] = &c
	return nil
}

func (m memRecords) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// ---------- events ----------

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, key)
	return nil
}

func (p *recordingPublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == key {
			n++
		}
	}
	return n
}

// ---------- fixture ----------

type fixture struct {
	t      *testing.T
	store  *memStore
	repo   *repository.Repository
	policy schedule.Policy
	events *recordingPublisher
	log    *zap.Logger
	now    time.Time

	admin   *entity.User
	student *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	policy := schedule.DefaultPolicy()
	policy.Location = time.UTC

	store := newMemStore()
	f := &fixture{
		t:      t,
		store:  store,
		repo:   store.repository(),
		policy: policy,
		events: &recordingPublisher{},
		log:    zap.NewNop(),
		now:    at("2026-03-10", "08:00"),
	}
	f.admin = f.addUser(entity.RoleAdmin, true)
	f.student = f.addUser(entity.RoleStudent, true)
	return f
}

func at(date, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) addUser(role entity.UserRole, active bool) *entity.User {
	f.t.Helper()
	id := uuid.New()
	u := &entity.User{
		BaseNoDelete:     entity.BaseNoDelete{ID: id, CreatedAt: f.now, UpdatedAt: f.now},
		Name:             string(role) + "-" + id.String()[:8],
		Email:            id.String()[:8] + "@box.test",
		Role:             role,
		EnrollmentActive: active,
	}
	f.store.users[id] = u
	return u
}

func (f *fixture) addClass(date, clock string, capacity int) *entity.ClassSession {
	f.t.Helper()
	c := &entity.ClassSession{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: f.now, UpdatedAt: f.now},
		Title:        "WOD " + clock,
		Date:         date,
		Time:         clock,
		Capacity:     capacity,
		CreatedBy:    f.admin.ID,
	}
	f.store.classes[c.ID] = c
	return c
}

// addReservation seeds a reservation directly; date/clock may be nil
func (f *fixture) addReservation(user *entity.User, class *entity.ClassSession, status entity.ReservationStatus, date, clock *string) *entity.Reservation {
	f.t.Helper()
	r := &entity.Reservation{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: f.now},
		UserID:     user.ID,
		ClassID:    class.ID,
		Status:     status,
		ClassDate:  date,
		ClassTime:  clock,
	}
	f.store.reservations[r.ID] = r
	return r
}

func (f *fixture) reservation(id uuid.UUID) *entity.Reservation {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	r, ok := f.store.reservations[id]
	if !ok {
		return nil
	}
	return copyReservation(r)
}

func (f *fixture) reservationService(enforceWindow bool) *reservationService {
	s := NewReservationService(f.repo, f.policy, enforceWindow, f.events, f.log).(*reservationService)
	s.now = f.clock
	return s
}

func (f *fixture) attendanceService() *attendanceService {
	s := NewAttendanceService(f.repo, f.policy, f.events, f.log).(*attendanceService)
	s.now = f.clock
	return s
}

func (f *fixture) noShowService(batchSize int) *noShowService {
	s := NewNoShowService(f.repo, f.policy, batchSize, f.events, f.log).(*noShowService)
	s.now = f.clock
	return s
}

func (f *fixture) classService() *classService {
	s := NewClassService(f.repo, f.policy, f.events, f.log).(*classService)
	s.now = f.clock
	return s
}

func (f *fixture) userService() *userService {
	s := NewUserService(f.repo, f.policy, f.events, f.log).(*userService)
	s.now = f.clock
	return s
}

func strPtr(s string) *string { return &s }
