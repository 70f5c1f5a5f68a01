package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/infrastructure/metrics"
	"clinic-management/internal/service"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// clinicStore is an in-memory stand-in for the database shared by the fake repositories.
// The unique slot index over non-cancelled rows is enforced in Create.
type clinicStore struct {
	mu              sync.Mutex
	appointments    map[uuid.UUID]*entity.Appointment
	users           map[uuid.UUID]*entity.User
	specializations map[int]*entity.Specialization
	staffSpecs      map[uuid.UUID]map[int]bool

	// staleSlotReads makes ExistsActiveForSlot report every slot as free, as if the
	// read ran before a concurrent booking committed
	staleSlotReads bool
}

func newClinicStore() *clinicStore {
	return &clinicStore{
		appointments:    map[uuid.UUID]*entity.Appointment{},
		users:           map[uuid.UUID]*entity.User{},
		specializations: map[int]*entity.Specialization{},
		staffSpecs:      map[uuid.UUID]map[int]bool{},
	}
}

func (s *clinicStore) addUser(name, role string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &entity.User{
		ID:       uuid.New(),
		Email:    name + "@clinic.test",
		FullName: name,
		Roles:    []entity.Role{{Name: role}},
	}
	s.users[u.ID] = u
	return u
}

func (s *clinicStore) addSpecialization(id int, name string) *entity.Specialization {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec := &entity.Specialization{ID: id, Name: name}
	s.specializations[id] = spec
	return spec
}

func (s *clinicStore) assign(userID uuid.UUID, specs ...*entity.Specialization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staffSpecs[userID] == nil {
		s.staffSpecs[userID] = map[int]bool{}
	}
	for _, spec := range specs {
		s.staffSpecs[userID][spec.ID] = true
		s.users[userID].Specializations = append(s.users[userID].Specializations, *spec)
	}
}

// seedAppointment stores an appointment as-is, bypassing the slot index
func (s *clinicStore) seedAppointment(a entity.Appointment) *entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	stored := a
	s.appointments[a.ID] = &stored
	return &a
}

func (s *clinicStore) appointment(id uuid.UUID) (entity.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return entity.Appointment{}, false
	}
	return *a, true
}

func (s *clinicStore) activeForSlot(doctorID uuid.UUID, date time.Time, slot entity.AppointmentSlot) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && sameDay(a.AppointmentDate, date) && a.AppointmentTime == slot &&
			a.Status != entity.AppointmentStatusCancelled {
			n++
		}
	}
	return n
}

func (s *clinicStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	s *clinicStore
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.appointments {
		if existing.DoctorID == a.DoctorID && sameDay(existing.AppointmentDate, a.AppointmentDate) &&
			existing.AppointmentTime == a.AppointmentTime && existing.Status != entity.AppointmentStatusCancelled {
			return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: slotConstraint}
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	r.s.appointments[a.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	found := *a
	found.Patient = r.s.users[a.PatientID]
	found.Doctor = r.s.users[a.DoctorID]
	return &found, nil
}

func (r *fakeAppointmentRepo) list(match func(*entity.Appointment) bool, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if !match(a) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	total := int64(len(out))
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = nil
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakeAppointmentRepo) FindByPatientID(_ context.Context, patientID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	return r.list(func(a *entity.Appointment) bool { return a.PatientID == patientID }, filter)
}

func (r *fakeAppointmentRepo) FindByDoctorID(_ context.Context, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	return r.list(func(a *entity.Appointment) bool { return a.DoctorID == doctorID }, filter)
}

func (r *fakeAppointmentRepo) FindAwaitingPayment(_ context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	return r.list(func(a *entity.Appointment) bool { return a.IsPending() && a.PaymentAmount == nil }, filter)
}

func (r *fakeAppointmentRepo) CountByPatientAndStatus(_ context.Context, patientID uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.appointments {
		if a.PatientID == patientID && a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) CountByStatus(_ context.Context, status entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) CountCompletedBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.appointments {
		if a.Status == entity.AppointmentStatusCompleted && inRange(a.CompletedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) SumPaymentsBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, a := range r.s.appointments {
		if a.Status == entity.AppointmentStatusCompleted && a.PaymentAmount != nil && inRange(a.CompletedAt, from, to) {
			sum = sum.Add(*a.PaymentAmount)
		}
	}
	return sum, nil
}

func inRange(at *time.Time, from, to time.Time) bool {
	return at != nil && !at.Before(from) && at.Before(to)
}

func (r *fakeAppointmentRepo) ExistsActiveForSlot(_ context.Context, doctorID uuid.UUID, date time.Time, slot entity.AppointmentSlot) (bool, error) {
	if r.s.staleSlotReads {
		return false, nil
	}
	return r.s.activeForSlot(doctorID, date, slot) > 0, nil
}

func (r *fakeAppointmentRepo) UpdateClinical(_ context.Context, a *entity.Appointment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[a.ID]
	if !ok || stored.Status == entity.AppointmentStatusCancelled {
		return 0, nil
	}
	updated := *a
	updated.Status = stored.Status
	r.s.appointments[a.ID] = &updated
	return 1, nil
}

func (r *fakeAppointmentRepo) CompleteWithPayment(_ context.Context, a *entity.Appointment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[a.ID]
	if !ok || !stored.IsPending() {
		return 0, nil
	}
	stored.PaymentMethod = a.PaymentMethod
	stored.PaymentAmount = a.PaymentAmount
	stored.PaymentStatus = a.PaymentStatus
	stored.Status = entity.AppointmentStatusCompleted
	stored.CompletedAt = a.CompletedAt
	return 1, nil
}

func (r *fakeAppointmentRepo) Cancel(_ context.Context, id uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[id]
	if !ok || !stored.IsPending() {
		return 0, nil
	}
	stored.Status = entity.AppointmentStatusCancelled
	stored.CancelledAt = &at
	return 1, nil
}

func (r *fakeAppointmentRepo) DeleteIfPending(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[id]
	if !ok || !stored.IsPending() {
		return 0, nil
	}
	delete(r.s.appointments, id)
	return 1, nil
}

type fakeUserRepo struct {
	repository.UserRepository
	s *clinicStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *fakeUserRepo) FindByIDWithRole(_ context.Context, id uuid.UUID, role string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !u.HasRole(role) {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) LockByID(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	return ok, nil
}

type fakeSpecializationRepo struct {
	repository.SpecializationRepository
	s *clinicStore
}

func (r *fakeSpecializationRepo) FindByID(_ context.Context, id int) (*entity.Specialization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.specializations[id], nil
}

func (r *fakeSpecializationRepo) FindByName(_ context.Context, name string) (*entity.Specialization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, spec := range r.s.specializations {
		if spec.Name == name {
			return spec, nil
		}
	}
	return nil, nil
}

func (r *fakeSpecializationRepo) IsAssignedToStaff(_ context.Context, userID uuid.UUID, specializationID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.staffSpecs[userID][specializationID], nil
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) record(action string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAudit) LogCreate(_ context.Context, action, _, _ string, _ interface{}) error {
	return a.record(action)
}

func (a *recordingAudit) LogUpdate(_ context.Context, action, _, _ string, _, _ interface{}) error {
	return a.record(action)
}

func (a *recordingAudit) LogDelete(_ context.Context, action, _, _ string, _ interface{}) error {
	return a.record(action)
}

func (a *recordingAudit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.actions...)
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (n *recordingNotifier) SendAppointmentConfirmation(_ context.Context, id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
}

func (n *recordingNotifier) IDs() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uuid.UUID(nil), n.ids...)
}

// clinicFixture wires the appointment usecases over a clinicStore.
// The clock is fixed at 2025-01-08 09:00 UTC.
type clinicFixture struct {
	store     *clinicStore
	audit     *recordingAudit
	notifier  *recordingNotifier
	collector *metrics.Collector
	policy    BookingPolicy

	appointments AppointmentUsecase
	lifecycle    AppointmentLifecycleUsecase

	cardiology    *entity.Specialization
	dermatology   *entity.Specialization
	patient       *entity.User
	cardiologist  *entity.User
	dermatologist *entity.User
	cashier       *entity.User
}

var fixtureNow = time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newClinicFixture(t *testing.T) *clinicFixture {
	t.Helper()

	store := newClinicStore()
	f := &clinicFixture{
		store:     store,
		audit:     &recordingAudit{},
		notifier:  &recordingNotifier{},
		collector: metrics.NewCollector("clinic_test"),
		policy: BookingPolicy{
			MaxPendingPerPatient: 2,
			Location:             time.UTC,
			Now:                  func() time.Time { return fixtureNow },
		},
	}

	f.cardiology = store.addSpecialization(1, "Cardiology")
	f.dermatology = store.addSpecialization(2, "Dermatology")
	f.patient = store.addUser("patient", entity.RolePatient)
	f.cardiologist = store.addUser("cardiologist", entity.RoleDoctor)
	f.dermatologist = store.addUser("dermatologist", entity.RoleDoctor)
	f.cashier = store.addUser("cashier", entity.RoleCashier)
	store.assign(f.cardiologist.ID, f.cardiology)
	store.assign(f.dermatologist.ID, f.dermatology)

	log := quietLogger()
	gate := service.NewAccessGate()
	v := validator.NewValidator()
	appointmentRepo := &fakeAppointmentRepo{s: store}

	f.appointments = NewAppointmentUsecase(
		log, fakeTransactor{}, appointmentRepo,
		&fakeUserRepo{s: store}, &fakeSpecializationRepo{s: store},
		f.audit, f.notifier, gate, v, f.collector, f.policy,
	)
	f.lifecycle = NewAppointmentLifecycleUsecase(
		log, fakeTransactor{}, appointmentRepo, f.audit, gate, v, f.collector, f.policy,
	)
	return f
}

func (f *clinicFixture) newPatient(name string) *entity.User {
	return f.store.addUser(name, entity.RolePatient)
}

// asUser builds a request context for u. Without explicit permissions the actor
// carries the default grants of its roles, as a freshly seeded database would.
func asUser(u *entity.User, permissions ...string) context.Context {
	if len(permissions) == 0 {
		for _, role := range u.RoleNames() {
			permissions = append(permissions, entity.DefaultRolePermissions[role]...)
		}
	}
	return service.WithActor(context.Background(), &service.Actor{
		UserID:      u.ID,
		Email:       u.Email,
		Roles:       u.RoleNames(),
		Permissions: permissions,
	})
}

func (f *clinicFixture) asCashier() context.Context {
	return asUser(f.cashier, entity.PermissionAcceptPayment)
}
