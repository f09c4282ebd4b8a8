package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lvaldez/driveline/internal/model"
)

// VehicleRepo encapsulates queries against the vehicles table,
// including the read paths that join approved-review aggregates.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleCols = "id, make, model, year, description, image, thumbnail, price_cents, miles, color, classification_id, created_at, updated_at"

func scanVehicle(row interface{ Scan(...any) error }, v *model.Vehicle) error {
	return row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Description, &v.Image,
		&v.Thumbnail, &v.PriceCents, &v.Miles, &v.Color, &v.ClassificationID,
		&v.CreatedAt, &v.UpdatedAt)
}

// Create inserts a vehicle. A classification_id that references no row
// fails the FK and surfaces as ErrBadReference.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO vehicles (make, model, year, description, image, thumbnail,
		   price_cents, miles, color, classification_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		v.Make, v.Model, v.Year, v.Description, v.Image, v.Thumbnail,
		v.PriceCents, v.Miles, v.Color, v.ClassificationID)
	if err != nil {
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a vehicle without review aggregates, for the edit
// and delete-confirm forms.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	var v model.Vehicle
	err := scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1", id), &v)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, ErrNotFound
	}
	return v, err
}

// statsJoin computes per-vehicle rating aggregates over approved
// reviews only. COALESCE turns "no approved reviews" into a 0 average
// instead of NULL. The join condition carries the approved filter so
// unapproved rows neither count nor drop the vehicle from the result.
const statsJoin = `SELECT v.id, v.make, v.model, v.year, v.description, v.image, v.thumbnail,
	   v.price_cents, v.miles, v.color, v.classification_id, v.created_at, v.updated_at,
	   COALESCE(AVG(r.rating), 0) AS avg_rating,
	   COUNT(r.id) AS review_count
	 FROM vehicles v
	 LEFT JOIN reviews r ON r.vehicle_id = v.id AND r.approved = TRUE`

// GetWithStats fetches a single vehicle joined with its approved-review
// average rating and count. The aggregates are computed on every call;
// a moderation change is reflected on the next read.
func (r *VehicleRepo) GetWithStats(ctx context.Context, id uint64) (model.VehicleWithStats, error) {
	var vs model.VehicleWithStats
	err := r.DB.QueryRowContext(ctx, statsJoin+" WHERE v.id=? GROUP BY v.id", id).
		Scan(&vs.ID, &vs.Make, &vs.Model, &vs.Year, &vs.Description, &vs.Image,
			&vs.Thumbnail, &vs.PriceCents, &vs.Miles, &vs.Color, &vs.ClassificationID,
			&vs.CreatedAt, &vs.UpdatedAt, &vs.AvgRating, &vs.ReviewCount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VehicleWithStats{}, ErrNotFound
	}
	return vs, err
}

// ListByClassificationWithStats returns every vehicle in a
// classification with its aggregates, ordered by make then model.
func (r *VehicleRepo) ListByClassificationWithStats(ctx context.Context, classificationID uint64) ([]model.VehicleWithStats, error) {
	rows, err := r.DB.QueryContext(ctx,
		statsJoin+" WHERE v.classification_id=? GROUP BY v.id ORDER BY v.make, v.model",
		classificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VehicleWithStats
	for rows.Next() {
		var vs model.VehicleWithStats
		if err := rows.Scan(&vs.ID, &vs.Make, &vs.Model, &vs.Year, &vs.Description,
			&vs.Image, &vs.Thumbnail, &vs.PriceCents, &vs.Miles, &vs.Color,
			&vs.ClassificationID, &vs.CreatedAt, &vs.UpdatedAt,
			&vs.AvgRating, &vs.ReviewCount); err != nil {
			return nil, err
		}
		out = append(out, vs)
	}
	return out, rows.Err()
}

// Update rewrites all ten descriptive fields. Retargeting the vehicle
// at a missing classification fails the FK before anything is written,
// leaving the prior row unchanged.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE vehicles SET make=?, model=?, year=?, description=?, image=?,
		   thumbnail=?, price_cents=?, miles=?, color=?, classification_id=?
		 WHERE id=?`,
		v.Make, v.Model, v.Year, v.Description, v.Image, v.Thumbnail,
		v.PriceCents, v.Miles, v.Color, v.ClassificationID, v.ID)
	if err != nil {
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	return requireRow(res)
}

// Delete removes a vehicle; its reviews cascade away with it.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM vehicles WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
