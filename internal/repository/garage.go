package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/motormania/motormania-go/internal/model"
)

var (
	ErrCarModelNotFound = errors.New("car model not found")
	ErrCarNotFound      = errors.New("car not found in garage")
	ErrCarAlreadyOwned  = errors.New("car model already in garage")
	ErrNoDefaultCar     = errors.New("no default car set")
)

// GarageRepository handles the user_cars table and its car_models/car_brands
// reference data.
type GarageRepository struct {
	db *sql.DB
}

// NewGarageRepository creates a new GarageRepository.
func NewGarageRepository(db *sql.DB) *GarageRepository {
	return &GarageRepository{db: db}
}

// GarageTx is the transactional view of one user's garage. All methods are
// scoped to the user the transaction was opened for.
type GarageTx interface {
	FindCarModel(ctx context.Context, brand, carModel string, year int) (int64, error)
	OwnsCarModel(ctx context.Context, carModelID int64) (bool, error)
	CountCars(ctx context.Context) (int, error)
	InsertCar(ctx context.Context, carModelID int64, isDefault bool) (int64, error)
	ListCars(ctx context.Context) ([]model.UserCar, error)
	GetCar(ctx context.Context, userCarID int64) (model.UserCar, error)
	DeleteCar(ctx context.Context, userCarID int64) error
	MostRecentCarID(ctx context.Context) (int64, error)
	ClearDefault(ctx context.Context) error
	SetDefault(ctx context.Context, userCarID int64) error
}

// WithUserTx runs fn inside a transaction that first locks the user's row.
// The lock serializes concurrent garage mutations for the same user, which is
// what keeps "exactly one default car" true under concurrent requests. Any
// error (or panic) from fn rolls the whole transaction back.
func (r *GarageRepository) WithUserTx(ctx context.Context, userID int64, fn func(GarageTx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var locked int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrUserNotFound
		}
		return err
	}

	err = fn(&garageTx{tx: tx, userID: userID})
	return err
}

type garageTx struct {
	tx     *sql.Tx
	userID int64
}

func (g *garageTx) FindCarModel(ctx context.Context, brand, carModel string, year int) (int64, error) {
	var id int64
	err := g.tx.QueryRowContext(ctx,
		`SELECT cm.id
		 FROM car_models cm
		 JOIN car_brands cb ON cm.brand_id = cb.id
		 WHERE LOWER(cb.name) = LOWER(?) AND LOWER(cm.name) = LOWER(?) AND cm.year = ?
		 LIMIT 1`,
		brand, carModel, year,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCarModelNotFound
		}
		return 0, err
	}
	return id, nil
}

func (g *garageTx) OwnsCarModel(ctx context.Context, carModelID int64) (bool, error) {
	var one int
	err := g.tx.QueryRowContext(ctx,
		`SELECT 1 FROM user_cars WHERE user_id = ? AND car_model_id = ? LIMIT 1`,
		g.userID, carModelID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *garageTx) CountCars(ctx context.Context) (int, error) {
	var n int
	err := g.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_cars WHERE user_id = ?`, g.userID,
	).Scan(&n)
	return n, err
}

func (g *garageTx) InsertCar(ctx context.Context, carModelID int64, isDefault bool) (int64, error) {
	result, err := g.tx.ExecContext(ctx,
		`INSERT INTO user_cars (user_id, car_model_id, is_default) VALUES (?, ?, ?)`,
		g.userID, carModelID, isDefault,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return 0, ErrCarAlreadyOwned
		}
		return 0, err
	}
	return result.LastInsertId()
}

// ListCars returns the user's cars ordered by id ascending. The cycle
// operation depends on this ordering being stable.
func (g *garageTx) ListCars(ctx context.Context) ([]model.UserCar, error) {
	rows, err := g.tx.QueryContext(ctx,
		`SELECT id, user_id, car_model_id, is_default, created_at
		 FROM user_cars WHERE user_id = ? ORDER BY id ASC`,
		g.userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []model.UserCar
	for rows.Next() {
		var c model.UserCar
		if err := rows.Scan(&c.ID, &c.UserID, &c.CarModelID, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (g *garageTx) GetCar(ctx context.Context, userCarID int64) (model.UserCar, error) {
	var c model.UserCar
	err := g.tx.QueryRowContext(ctx,
		`SELECT id, user_id, car_model_id, is_default, created_at
		 FROM user_cars WHERE id = ? AND user_id = ?`,
		userCarID, g.userID,
	).Scan(&c.ID, &c.UserID, &c.CarModelID, &c.IsDefault, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserCar{}, ErrCarNotFound
		}
		return model.UserCar{}, err
	}
	return c, nil
}

func (g *garageTx) DeleteCar(ctx context.Context, userCarID int64) error {
	result, err := g.tx.ExecContext(ctx,
		`DELETE FROM user_cars WHERE id = ? AND user_id = ?`, userCarID, g.userID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCarNotFound
	}
	return nil
}

// MostRecentCarID returns the user's most recently created car, the
// replacement-default policy after deleting the default car.
func (g *garageTx) MostRecentCarID(ctx context.Context) (int64, error) {
	var id int64
	err := g.tx.QueryRowContext(ctx,
		`SELECT id FROM user_cars WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		g.userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCarNotFound
		}
		return 0, err
	}
	return id, nil
}

func (g *garageTx) ClearDefault(ctx context.Context) error {
	_, err := g.tx.ExecContext(ctx,
		`UPDATE user_cars SET is_default = FALSE WHERE user_id = ?`, g.userID,
	)
	return err
}

func (g *garageTx) SetDefault(ctx context.Context, userCarID int64) error {
	result, err := g.tx.ExecContext(ctx,
		`UPDATE user_cars SET is_default = TRUE WHERE id = ? AND user_id = ?`,
		userCarID, g.userID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCarNotFound
	}
	return nil
}

const garageCarQuery = `
	SELECT uc.id, cb.name, cm.name, cm.year
	FROM user_cars uc
	JOIN car_models cm ON uc.car_model_id = cm.id
	JOIN car_brands cb ON cm.brand_id = cb.id`

// ListGarage returns the user's garage for display, default car first.
func (r *GarageRepository) ListGarage(ctx context.Context, userID int64) ([]model.GarageCar, error) {
	rows, err := r.db.QueryContext(ctx,
		garageCarQuery+`
		WHERE uc.user_id = ?
		ORDER BY uc.is_default DESC, cb.name ASC, cm.name ASC, cm.year DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := []model.GarageCar{}
	for rows.Next() {
		c, err := scanGarageCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// DefaultCar returns the user's default car, or ErrNoDefaultCar if the
// garage is empty.
func (r *GarageRepository) DefaultCar(ctx context.Context, userID int64) (model.GarageCar, error) {
	row := r.db.QueryRowContext(ctx,
		garageCarQuery+` WHERE uc.user_id = ? AND uc.is_default = TRUE LIMIT 1`,
		userID,
	)
	c, err := scanGarageCar(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GarageCar{}, ErrNoDefaultCar
		}
		return model.GarageCar{}, err
	}
	return c, nil
}

// GarageCar returns display details for one of the user's cars.
func (r *GarageRepository) GarageCar(ctx context.Context, userID, userCarID int64) (model.GarageCar, error) {
	row := r.db.QueryRowContext(ctx,
		garageCarQuery+` WHERE uc.id = ? AND uc.user_id = ?`,
		userCarID, userID,
	)
	c, err := scanGarageCar(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GarageCar{}, ErrCarNotFound
		}
		return model.GarageCar{}, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGarageCar(row rowScanner) (model.GarageCar, error) {
	var c model.GarageCar
	if err := row.Scan(&c.ID, &c.Brand, &c.Model, &c.Year); err != nil {
		return model.GarageCar{}, err
	}
	c.ImageURL = model.CarImageURL(c.Brand, c.Model, c.Year)
	return c, nil
}

// ListBrands returns all car brands ordered by name.
func (r *GarageRepository) ListBrands(ctx context.Context) ([]model.CarBrand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, logo_url FROM car_brands ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []model.CarBrand{}
	for rows.Next() {
		var b model.CarBrand
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// ListModelsByBrand returns a brand's models, newest year first.
func (r *GarageRepository) ListModelsByBrand(ctx context.Context, brandID int64) ([]model.CarModel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, brand_id, name, year FROM car_models WHERE brand_id = ? ORDER BY year DESC, name ASC`,
		brandID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	models := []model.CarModel{}
	for rows.Next() {
		var m model.CarModel
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name, &m.Year); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}
