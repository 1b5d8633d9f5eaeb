package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
)

type fakeCarModel struct {
	id    int64
	brand string
	model string
	year  int
}

// fakeGarageStore keeps one user's cars in memory. WithUserTx holds a mutex
// for the duration of fn, mirroring the row lock that serializes a user's
// garage mutations, and snapshots the state first so a failed fn restores it
// like a rolled-back transaction.
type fakeGarageStore struct {
	mu     sync.Mutex
	models []fakeCarModel
	cars   []model.UserCar
	nextID int64
	now    time.Time
}

func newFakeGarageStore() *fakeGarageStore {
	return &fakeGarageStore{
		models: []fakeCarModel{
			{id: 1, brand: "Toyota", model: "Corolla", year: 2020},
			{id: 2, brand: "Honda", model: "Civic", year: 2021},
			{id: 3, brand: "Ford", model: "Focus", year: 2019},
			{id: 4, brand: "BMW", model: "X5", year: 2022},
		},
		nextID: 1,
		now:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeGarageStore) WithUserTx(_ context.Context, userID int64, fn func(repository.GarageTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]model.UserCar, len(s.cars))
	copy(snapshot, s.cars)
	snapID, snapNow := s.nextID, s.now

	if err := fn(&fakeGarageTx{store: s, userID: userID}); err != nil {
		s.cars, s.nextID, s.now = snapshot, snapID, snapNow
		return err
	}
	return nil
}

func (s *fakeGarageStore) ListGarage(_ context.Context, userID int64) ([]model.GarageCar, error) {
	var out []model.GarageCar
	for _, c := range s.cars {
		if c.UserID == userID {
			out = append(out, s.garageCar(c))
		}
	}
	return out, nil
}

func (s *fakeGarageStore) DefaultCar(_ context.Context, userID int64) (model.GarageCar, error) {
	for _, c := range s.cars {
		if c.UserID == userID && c.IsDefault {
			return s.garageCar(c), nil
		}
	}
	return model.GarageCar{}, repository.ErrNoDefaultCar
}

func (s *fakeGarageStore) GarageCar(_ context.Context, userID, userCarID int64) (model.GarageCar, error) {
	for _, c := range s.cars {
		if c.UserID == userID && c.ID == userCarID {
			return s.garageCar(c), nil
		}
	}
	return model.GarageCar{}, repository.ErrCarNotFound
}

func (s *fakeGarageStore) ListBrands(context.Context) ([]model.CarBrand, error) {
	return nil, nil
}

func (s *fakeGarageStore) ListModelsByBrand(context.Context, int64) ([]model.CarModel, error) {
	return nil, nil
}

func (s *fakeGarageStore) garageCar(c model.UserCar) model.GarageCar {
	for _, m := range s.models {
		if m.id == c.CarModelID {
			return model.GarageCar{
				ID:       c.ID,
				Brand:    m.brand,
				Model:    m.model,
				Year:     m.year,
				ImageURL: model.CarImageURL(m.brand, m.model, m.year),
			}
		}
	}
	return model.GarageCar{ID: c.ID}
}

type fakeGarageTx struct {
	store  *fakeGarageStore
	userID int64
}

func (t *fakeGarageTx) FindCarModel(_ context.Context, brand, carModel string, year int) (int64, error) {
	for _, m := range t.store.models {
		if m.brand == brand && m.model == carModel && m.year == year {
			return m.id, nil
		}
	}
	return 0, repository.ErrCarModelNotFound
}

func (t *fakeGarageTx) OwnsCarModel(_ context.Context, carModelID int64) (bool, error) {
	for _, c := range t.store.cars {
		if c.UserID == t.userID && c.CarModelID == carModelID {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeGarageTx) CountCars(context.Context) (int, error) {
	n := 0
	for _, c := range t.store.cars {
		if c.UserID == t.userID {
			n++
		}
	}
	return n, nil
}

func (t *fakeGarageTx) InsertCar(_ context.Context, carModelID int64, isDefault bool) (int64, error) {
	id := t.store.nextID
	t.store.nextID++
	t.store.now = t.store.now.Add(time.Second)
	t.store.cars = append(t.store.cars, model.UserCar{
		ID:         id,
		UserID:     t.userID,
		CarModelID: carModelID,
		IsDefault:  isDefault,
		CreatedAt:  t.store.now,
	})
	return id, nil
}

func (t *fakeGarageTx) ListCars(context.Context) ([]model.UserCar, error) {
	var out []model.UserCar
	for _, c := range t.store.cars {
		if c.UserID == t.userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *fakeGarageTx) GetCar(_ context.Context, userCarID int64) (model.UserCar, error) {
	for _, c := range t.store.cars {
		if c.UserID == t.userID && c.ID == userCarID {
			return c, nil
		}
	}
	return model.UserCar{}, repository.ErrCarNotFound
}

func (t *fakeGarageTx) DeleteCar(_ context.Context, userCarID int64) error {
	for i, c := range t.store.cars {
		if c.UserID == t.userID && c.ID == userCarID {
			t.store.cars = append(t.store.cars[:i], t.store.cars[i+1:]...)
			return nil
		}
	}
	return repository.ErrCarNotFound
}

func (t *fakeGarageTx) MostRecentCarID(context.Context) (int64, error) {
	var best *model.UserCar
	for i, c := range t.store.cars {
		if c.UserID != t.userID {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = &t.store.cars[i]
		}
	}
	if best == nil {
		return 0, repository.ErrCarNotFound
	}
	return best.ID, nil
}

func (t *fakeGarageTx) ClearDefault(context.Context) error {
	for i := range t.store.cars {
		if t.store.cars[i].UserID == t.userID {
			t.store.cars[i].IsDefault = false
		}
	}
	return nil
}

func (t *fakeGarageTx) SetDefault(_ context.Context, userCarID int64) error {
	for i := range t.store.cars {
		if t.store.cars[i].UserID == t.userID && t.store.cars[i].ID == userCarID {
			t.store.cars[i].IsDefault = true
			return nil
		}
	}
	return repository.ErrCarNotFound
}

const testUserID = int64(7)

func addCar(t *testing.T, svc *GarageService, brand, carModel string, year int) model.AddCarResponse {
	t.Helper()
	resp, err := svc.AddCar(context.Background(), testUserID, model.AddCarRequest{
		Brand: brand, Model: carModel, Year: year,
	})
	if err != nil {
		t.Fatalf("AddCar(%s %s %d): %v", brand, carModel, year, err)
	}
	return resp
}

// defaultCount returns how many of the user's cars are flagged default.
func defaultCount(store *fakeGarageStore) int {
	n := 0
	for _, c := range store.cars {
		if c.UserID == testUserID && c.IsDefault {
			n++
		}
	}
	return n
}

func TestAddCar_FirstCarBecomesDefault(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	first := addCar(t, svc, "Toyota", "Corolla", 2020)
	if !first.IsDefault {
		t.Error("first car should become the default")
	}

	second := addCar(t, svc, "Honda", "Civic", 2021)
	if second.IsDefault {
		t.Error("second car should not change the default")
	}

	if defaultCount(store) != 1 {
		t.Errorf("expected exactly one default, got %d", defaultCount(store))
	}
	car, err := svc.DefaultCar(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("DefaultCar: %v", err)
	}
	if car.Brand != "Toyota" {
		t.Errorf("expected Toyota to stay default, got %s", car.Brand)
	}
}

func TestAddCar_ConcurrentFirstCarsSingleDefault(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	// Two racing adds for a brand-new user. The per-user lock serializes
	// them, so only the one that lands first may claim the default flag.
	var wg sync.WaitGroup
	results := make([]model.AddCarResponse, 2)
	errs := make([]error, 2)
	requests := []model.AddCarRequest{
		{Brand: "Toyota", Model: "Corolla", Year: 2020},
		{Brand: "Honda", Model: "Civic", Year: 2021},
	}
	for i, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.AddCar(context.Background(), testUserID, req)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("AddCar(%s): %v", requests[i].Brand, err)
		}
	}
	if len(store.cars) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(store.cars))
	}
	if defaultCount(store) != 1 {
		t.Errorf("expected exactly one default, got %d", defaultCount(store))
	}
	if results[0].IsDefault == results[1].IsDefault {
		t.Errorf("exactly one add should report the default flag, got %v and %v",
			results[0].IsDefault, results[1].IsDefault)
	}
}

func TestAddCar_UnknownModel(t *testing.T) {
	svc := NewGarageService(newFakeGarageStore())

	_, err := svc.AddCar(context.Background(), testUserID, model.AddCarRequest{
		Brand: "Lada", Model: "Niva", Year: 1995,
	})
	if !errors.Is(err, repository.ErrCarModelNotFound) {
		t.Errorf("expected ErrCarModelNotFound, got %v", err)
	}
}

func TestAddCar_DuplicateModel(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020)

	_, err := svc.AddCar(context.Background(), testUserID, model.AddCarRequest{
		Brand: "Toyota", Model: "Corolla", Year: 2020,
	})
	if !errors.Is(err, repository.ErrCarAlreadyOwned) {
		t.Errorf("expected ErrCarAlreadyOwned, got %v", err)
	}
	if len(store.cars) != 1 {
		t.Errorf("failed add should leave the garage unchanged, have %d cars", len(store.cars))
	}
}

func TestDeleteCar_LastCarRefused(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	only := addCar(t, svc, "Toyota", "Corolla", 2020)

	id := mustParseID(t, only.UserCarID)
	if err := svc.DeleteCar(context.Background(), testUserID, id); !errors.Is(err, ErrLastCar) {
		t.Errorf("expected ErrLastCar, got %v", err)
	}
	if len(store.cars) != 1 {
		t.Error("refused delete must not remove the car")
	}
	if defaultCount(store) != 1 {
		t.Errorf("expected exactly one default, got %d", defaultCount(store))
	}
}

func TestDeleteCar_DefaultReassignedToMostRecent(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	first := addCar(t, svc, "Toyota", "Corolla", 2020)
	addCar(t, svc, "Honda", "Civic", 2021)
	third := addCar(t, svc, "Ford", "Focus", 2019)

	if err := svc.DeleteCar(context.Background(), testUserID, mustParseID(t, first.UserCarID)); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}

	if defaultCount(store) != 1 {
		t.Fatalf("expected exactly one default, got %d", defaultCount(store))
	}
	car, err := svc.DefaultCar(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("DefaultCar: %v", err)
	}
	if car.ID != mustParseID(t, third.UserCarID) {
		t.Errorf("expected most recently added car %s to become default, got %d", third.UserCarID, car.ID)
	}
}

func TestDeleteCar_NonDefaultKeepsDefault(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020)
	second := addCar(t, svc, "Honda", "Civic", 2021)

	if err := svc.DeleteCar(context.Background(), testUserID, mustParseID(t, second.UserCarID)); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}

	car, err := svc.DefaultCar(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("DefaultCar: %v", err)
	}
	if car.Brand != "Toyota" {
		t.Errorf("default should stay on Toyota, got %s", car.Brand)
	}
}

func TestDeleteCar_NotOwned(t *testing.T) {
	svc := NewGarageService(newFakeGarageStore())

	if err := svc.DeleteCar(context.Background(), testUserID, 99); !errors.Is(err, repository.ErrCarNotFound) {
		t.Errorf("expected ErrCarNotFound, got %v", err)
	}
}

func TestSetDefaultCar(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020)
	second := addCar(t, svc, "Honda", "Civic", 2021)

	if err := svc.SetDefaultCar(context.Background(), testUserID, mustParseID(t, second.UserCarID)); err != nil {
		t.Fatalf("SetDefaultCar: %v", err)
	}

	if defaultCount(store) != 1 {
		t.Fatalf("expected exactly one default, got %d", defaultCount(store))
	}
	car, err := svc.DefaultCar(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("DefaultCar: %v", err)
	}
	if car.Brand != "Honda" {
		t.Errorf("expected Honda default, got %s", car.Brand)
	}
}

func TestSetDefaultCar_NotOwned(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020)

	if err := svc.SetDefaultCar(context.Background(), testUserID, 99); !errors.Is(err, repository.ErrCarNotFound) {
		t.Errorf("expected ErrCarNotFound, got %v", err)
	}
	if defaultCount(store) != 1 {
		t.Errorf("failed set must leave the existing default, got %d defaults", defaultCount(store))
	}
}

func TestCycleDefaultCar_WrapsBothWays(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020) // index 0, default
	addCar(t, svc, "Honda", "Civic", 2021)    // index 1
	addCar(t, svc, "Ford", "Focus", 2019)     // index 2

	// Backwards from index 0 wraps to the last car.
	car, err := svc.CycleDefaultCar(context.Background(), testUserID, -1)
	if err != nil {
		t.Fatalf("CycleDefaultCar(-1): %v", err)
	}
	if car.Brand != "Ford" {
		t.Errorf("expected wrap to Ford, got %s", car.Brand)
	}

	// Forwards from the last car wraps to the first.
	car, err = svc.CycleDefaultCar(context.Background(), testUserID, 1)
	if err != nil {
		t.Fatalf("CycleDefaultCar(1): %v", err)
	}
	if car.Brand != "Toyota" {
		t.Errorf("expected wrap to Toyota, got %s", car.Brand)
	}

	if defaultCount(store) != 1 {
		t.Errorf("expected exactly one default, got %d", defaultCount(store))
	}
}

func TestCycleDefaultCar_NoDefaultStartsAtFirst(t *testing.T) {
	store := newFakeGarageStore()
	svc := NewGarageService(store)

	addCar(t, svc, "Toyota", "Corolla", 2020)
	addCar(t, svc, "Honda", "Civic", 2021)
	for i := range store.cars {
		store.cars[i].IsDefault = false
	}

	car, err := svc.CycleDefaultCar(context.Background(), testUserID, 1)
	if err != nil {
		t.Fatalf("CycleDefaultCar: %v", err)
	}
	if car.Brand != "Toyota" {
		t.Errorf("expected first car to become default, got %s", car.Brand)
	}
}

func TestCycleDefaultCar_EmptyGarage(t *testing.T) {
	svc := NewGarageService(newFakeGarageStore())

	_, err := svc.CycleDefaultCar(context.Background(), testUserID, 1)
	if !errors.Is(err, ErrEmptyGarage) {
		t.Errorf("expected ErrEmptyGarage, got %v", err)
	}
}

func mustParseID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("invalid id %q", s)
	}
	return id
}
