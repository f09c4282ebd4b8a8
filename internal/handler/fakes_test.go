package handler_test

// In-memory store fakes. They mirror the MySQL repositories' contract,
// including the typed errors and the approved-only aggregates, so the
// controller flows can be exercised without a database.

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/repository"
	"github.com/lvaldez/driveline/internal/utils"
)

type memStore struct {
	mu sync.Mutex

	accounts        map[uint64]model.Account
	classifications map[uint64]model.Classification
	vehicles        map[uint64]model.Vehicle
	reviews         map[uint64]model.Review
	nextID          uint64
}

func newMemStore() *memStore {
	return &memStore{
		accounts:        map[uint64]model.Account{},
		classifications: map[uint64]model.Classification{},
		vehicles:        map[uint64]model.Vehicle{},
		reviews:         map[uint64]model.Review{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

// --- AccountStore ---

type fakeAccounts struct{ *memStore }

func (f fakeAccounts) Create(_ context.Context, firstName, lastName, email, password string, role model.Role, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := f.id()
	f.accounts[id] = model.Account{
		ID: id, FirstName: firstName, LastName: lastName,
		Email: email, PasswordHash: hash, Role: role,
	}
	return id, nil
}

func (f fakeAccounts) GetByEmail(_ context.Context, email string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (f fakeAccounts) GetByID(_ context.Context, id uint64) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f fakeAccounts) UpdateProfile(_ context.Context, id uint64, firstName, lastName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	for oid, other := range f.accounts {
		if oid != id && other.Email == email {
			return repository.ErrEmailExists
		}
	}
	a.FirstName, a.LastName, a.Email = firstName, lastName, email
	f.accounts[id] = a
	return nil
}

func (f fakeAccounts) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	f.accounts[id] = a
	return nil
}

func (f fakeAccounts) UpdateAccount(_ context.Context, id uint64, firstName, lastName, email string, role model.Role) error {
	if err := f.UpdateProfile(context.Background(), id, firstName, lastName, email); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.accounts[id]
	a.Role = role
	f.accounts[id] = a
	return nil
}

func (f fakeAccounts) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.accounts, id)
	for rid, rv := range f.reviews {
		if rv.AccountID == id {
			delete(f.reviews, rid)
		}
	}
	return nil
}

func (f fakeAccounts) List(_ context.Context) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeAccounts) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	all, _ := f.List(ctx)
	out := all[:0]
	for _, a := range all {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- ClassificationStore ---

type fakeClassifications struct{ *memStore }

func (f fakeClassifications) Create(_ context.Context, name string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cl := range f.classifications {
		if cl.Name == name {
			return 0, repository.ErrClassificationExists
		}
	}
	id := f.id()
	f.classifications[id] = model.Classification{ID: id, Name: name}
	return id, nil
}

func (f fakeClassifications) GetByID(_ context.Context, id uint64) (model.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cl, ok := f.classifications[id]
	if !ok {
		return model.Classification{}, repository.ErrNotFound
	}
	return cl, nil
}

func (f fakeClassifications) List(_ context.Context) ([]model.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Classification, 0, len(f.classifications))
	for _, cl := range f.classifications {
		out = append(out, cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- VehicleStore ---

type fakeVehicles struct{ *memStore }

func (f fakeVehicles) Create(_ context.Context, v *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.classifications[v.ClassificationID]; !ok {
		return repository.ErrBadReference
	}
	v.ID = f.id()
	f.vehicles[v.ID] = *v
	return nil
}

func (f fakeVehicles) GetByID(_ context.Context, id uint64) (model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return model.Vehicle{}, repository.ErrNotFound
	}
	return v, nil
}

// stats computes the approved-review aggregates the SQL join produces.
// Caller must hold the lock.
func (m *memStore) stats(vehicleID uint64) (float64, int) {
	var sum, n int
	for _, rv := range m.reviews {
		if rv.VehicleID == vehicleID && rv.Approved {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

func (f fakeVehicles) GetWithStats(_ context.Context, id uint64) (model.VehicleWithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return model.VehicleWithStats{}, repository.ErrNotFound
	}
	avg, n := f.stats(id)
	return model.VehicleWithStats{Vehicle: v, AvgRating: avg, ReviewCount: n}, nil
}

func (f fakeVehicles) ListByClassificationWithStats(_ context.Context, classificationID uint64) ([]model.VehicleWithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.VehicleWithStats
	for _, v := range f.vehicles {
		if v.ClassificationID != classificationID {
			continue
		}
		avg, n := f.stats(v.ID)
		out = append(out, model.VehicleWithStats{Vehicle: v, AvgRating: avg, ReviewCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeVehicles) Update(_ context.Context, v *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[v.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := f.classifications[v.ClassificationID]; !ok {
		return repository.ErrBadReference
	}
	f.vehicles[v.ID] = *v
	return nil
}

func (f fakeVehicles) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.vehicles, id)
	for rid, rv := range f.reviews {
		if rv.VehicleID == id {
			delete(f.reviews, rid)
		}
	}
	return nil
}

// --- ReviewStore ---

type fakeReviews struct{ *memStore }

func (f fakeReviews) Create(_ context.Context, rv *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[rv.VehicleID]; !ok {
		return repository.ErrBadReference
	}
	for _, existing := range f.reviews {
		if existing.VehicleID == rv.VehicleID && existing.AccountID == rv.AccountID {
			return repository.ErrDuplicateReview
		}
	}
	rv.ID = f.id()
	rv.Approved = false
	rv.CreatedAt = time.Now().UTC()
	f.reviews[rv.ID] = *rv
	return nil
}

// withContext joins the review with reviewer and vehicle names the way
// the SQL queries do. Caller must hold the lock.
func (m *memStore) withContext(rv model.Review) model.ReviewWithContext {
	rc := model.ReviewWithContext{Review: rv}
	if a, ok := m.accounts[rv.AccountID]; ok {
		rc.ReviewerFirstName, rc.ReviewerLastName = a.FirstName, a.LastName
	}
	if v, ok := m.vehicles[rv.VehicleID]; ok {
		rc.VehicleMake, rc.VehicleModel, rc.VehicleYear = v.Make, v.Model, v.Year
	}
	return rc
}

func (f fakeReviews) GetByID(_ context.Context, id uint64) (model.ReviewWithContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return model.ReviewWithContext{}, repository.ErrNotFound
	}
	return f.withContext(rv), nil
}

func (f fakeReviews) Update(_ context.Context, id uint64, title, body string, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	rv.Title, rv.Body, rv.Rating = title, body, rating
	f.reviews[id] = rv
	return nil
}

func (f fakeReviews) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f fakeReviews) list(filter func(model.Review) bool) []model.ReviewWithContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReviewWithContext
	for _, rv := range f.reviews {
		if filter(rv) {
			out = append(out, f.withContext(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f fakeReviews) ListByVehicle(_ context.Context, vehicleID uint64) ([]model.ReviewWithContext, error) {
	return f.list(func(rv model.Review) bool { return rv.VehicleID == vehicleID && rv.Approved }), nil
}

func (f fakeReviews) ListByAccount(_ context.Context, accountID uint64) ([]model.ReviewWithContext, error) {
	return f.list(func(rv model.Review) bool { return rv.AccountID == accountID }), nil
}

func (f fakeReviews) ListAll(_ context.Context) ([]model.ReviewWithContext, error) {
	return f.list(func(model.Review) bool { return true }), nil
}

func (f fakeReviews) ToggleApproval(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	rv.Approved = !rv.Approved
	f.reviews[id] = rv
	return rv.Approved, nil
}
