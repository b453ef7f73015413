package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// EntryRepo persists emission entries.  Entries are insert-only.
type EntryRepo struct {
	db      DBTX
	dialect database.Dialect
}

func NewEntryRepo(db *database.DB) *EntryRepo {
	return &EntryRepo{db: db.DB, dialect: db.Dialect}
}

const entryColumns = `id, user_id, date, car_km, bike_km, bus_km, electricity, meat_meals, veg_meals,
	car_emission, bike_emission, bus_emission, electricity_emission, food_emission, total_emission, created_at`

// Create writes raw and derived values in a single INSERT and fills in the
// entry's ID.  A missing account surfaces as ErrAccountNotFound.
func (r *EntryRepo) Create(ctx context.Context, e *model.Entry) error {
	const q = `INSERT INTO entries
		(user_id, date, car_km, bike_km, bus_km, electricity, meat_meals, veg_meals,
		 car_emission, bike_emission, bus_emission, electricity_emission, food_emission, total_emission, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insertID(ctx, r.db, r.dialect, q,
		e.AccountID, e.Date,
		e.CarKm, e.BikeKm, e.BusKm, e.ElectricityKWh, e.MeatMeals, e.VegMeals,
		e.Car, e.Bike, e.Bus, e.Electricity, e.Food, e.Total,
		model.FormatTimestamp(e.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	e.ID = id
	return nil
}

// ListByAccount returns the account's entries ascending by date, with
// insertion order (id) breaking ties.  The slice is empty, never nil, when
// there are no entries.
func (r *EntryRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		r.dialect.Rebind("SELECT "+entryColumns+" FROM entries WHERE user_id = ? ORDER BY date ASC, id ASC"),
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Entry{}
	for rows.Next() {
		var (
			e       model.Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Date,
			&e.CarKm, &e.BikeKm, &e.BusKm, &e.ElectricityKWh, &e.MeatMeals, &e.VegMeals,
			&e.Car, &e.Bike, &e.Bus, &e.Electricity, &e.Food, &e.Total, &created); err != nil {
			return nil, err
		}
		if t, err := model.ParseTimestamp(created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
