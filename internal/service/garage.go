package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
)

var (
	ErrLastCar     = errors.New("cannot delete the only car in the garage")
	ErrEmptyGarage = errors.New("garage is empty")
)

// GarageStore is the persistence surface GarageService depends on. Mutations
// run through WithUserTx, which serializes them per user.
type GarageStore interface {
	WithUserTx(ctx context.Context, userID int64, fn func(repository.GarageTx) error) error
	ListGarage(ctx context.Context, userID int64) ([]model.GarageCar, error)
	DefaultCar(ctx context.Context, userID int64) (model.GarageCar, error)
	GarageCar(ctx context.Context, userID, userCarID int64) (model.GarageCar, error)
	ListBrands(ctx context.Context) ([]model.CarBrand, error)
	ListModelsByBrand(ctx context.Context, brandID int64) ([]model.CarModel, error)
}

// GarageService manages each user's garage and its single default car.
type GarageService struct {
	store GarageStore
}

// NewGarageService creates a new GarageService.
func NewGarageService(store GarageStore) *GarageService {
	return &GarageService{store: store}
}

// AddCar adds a car model to the user's garage. The first car added becomes
// the default; later cars do not change the default.
func (s *GarageService) AddCar(ctx context.Context, userID int64, req model.AddCarRequest) (model.AddCarResponse, error) {
	var resp model.AddCarResponse
	err := s.store.WithUserTx(ctx, userID, func(tx repository.GarageTx) error {
		carModelID, err := tx.FindCarModel(ctx, req.Brand, req.Model, req.Year)
		if err != nil {
			return err
		}

		owned, err := tx.OwnsCarModel(ctx, carModelID)
		if err != nil {
			return err
		}
		if owned {
			return repository.ErrCarAlreadyOwned
		}

		count, err := tx.CountCars(ctx)
		if err != nil {
			return err
		}
		isDefault := count == 0

		userCarID, err := tx.InsertCar(ctx, carModelID, isDefault)
		if err != nil {
			return err
		}

		resp = model.AddCarResponse{
			UserCarID: strconv.FormatInt(userCarID, 10),
			IsDefault: isDefault,
		}
		return nil
	})
	if err != nil {
		return model.AddCarResponse{}, err
	}
	return resp, nil
}

// DeleteCar removes a car from the garage. The only car in a garage cannot
// be deleted. When the deleted car was the default, the most recently added
// remaining car becomes the new default in the same transaction.
func (s *GarageService) DeleteCar(ctx context.Context, userID, userCarID int64) error {
	return s.store.WithUserTx(ctx, userID, func(tx repository.GarageTx) error {
		car, err := tx.GetCar(ctx, userCarID)
		if err != nil {
			return err
		}

		count, err := tx.CountCars(ctx)
		if err != nil {
			return err
		}
		if count == 1 {
			return ErrLastCar
		}

		if err := tx.DeleteCar(ctx, userCarID); err != nil {
			return err
		}

		if car.IsDefault {
			nextID, err := tx.MostRecentCarID(ctx)
			if err != nil {
				return err
			}
			if err := tx.SetDefault(ctx, nextID); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetDefaultCar makes the given car the user's default. Any previous default
// is cleared in the same transaction, so exactly one car ends up default.
func (s *GarageService) SetDefaultCar(ctx context.Context, userID, userCarID int64) error {
	return s.store.WithUserTx(ctx, userID, func(tx repository.GarageTx) error {
		if _, err := tx.GetCar(ctx, userCarID); err != nil {
			return err
		}
		if err := tx.ClearDefault(ctx); err != nil {
			return err
		}
		return tx.SetDefault(ctx, userCarID)
	})
}

// CycleDefaultCar moves the default to the neighbouring car in id order,
// wrapping at either end. direction is +1 for the next car and -1 for the
// previous one. A garage with no default starts from its first car.
func (s *GarageService) CycleDefaultCar(ctx context.Context, userID int64, direction int) (model.GarageCar, error) {
	var nextID int64
	err := s.store.WithUserTx(ctx, userID, func(tx repository.GarageTx) error {
		cars, err := tx.ListCars(ctx)
		if err != nil {
			return err
		}
		if len(cars) == 0 {
			return ErrEmptyGarage
		}

		current := -1
		for i, c := range cars {
			if c.IsDefault {
				current = i
				break
			}
		}

		var next int
		if current < 0 {
			next = 0
		} else {
			n := len(cars)
			next = ((current+direction)%n + n) % n
		}
		nextID = cars[next].ID

		if err := tx.ClearDefault(ctx); err != nil {
			return err
		}
		return tx.SetDefault(ctx, nextID)
	})
	if err != nil {
		return model.GarageCar{}, err
	}
	return s.store.GarageCar(ctx, userID, nextID)
}

// ListGarage returns the user's cars, default first.
func (s *GarageService) ListGarage(ctx context.Context, userID int64) ([]model.GarageCar, error) {
	return s.store.ListGarage(ctx, userID)
}

// DefaultCar returns the user's default car.
func (s *GarageService) DefaultCar(ctx context.Context, userID int64) (model.GarageCar, error) {
	return s.store.DefaultCar(ctx, userID)
}

// ListBrands returns all car brands.
func (s *GarageService) ListBrands(ctx context.Context) ([]model.CarBrand, error) {
	return s.store.ListBrands(ctx)
}

// ListModelsByBrand returns a brand's models.
func (s *GarageService) ListModelsByBrand(ctx context.Context, brandID int64) ([]model.CarModel, error) {
	return s.store.ListModelsByBrand(ctx, brandID)
}
