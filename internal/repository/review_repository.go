package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lvaldez/driveline/internal/model"
)

// ErrDuplicateReview is returned when an account submits a second
// review for a vehicle it already reviewed. The UNIQUE(vehicle_id,
// account_id) key raises it, so two concurrent submissions cannot both
// slip through: one insert wins, the other maps to this error.
var ErrDuplicateReview = errors.New("account already reviewed this vehicle")

// ReviewRepo encapsulates queries against the reviews table.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Create inserts a pending review and fills in its ID. New reviews are
// always unapproved; only moderation flips the flag.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (vehicle_id, account_id, title, body, rating) VALUES (?,?,?,?,?)",
		rv.VehicleID, rv.AccountID, rv.Title, rv.Body, rv.Rating)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReview
		}
		if isBadReference(err) {
			return ErrBadReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	rv.Approved = false
	return nil
}

// GetByID fetches one review joined with its reviewer and vehicle
// names, which the edit and delete-confirm views display.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.ReviewWithContext, error) {
	var rc model.ReviewWithContext
	err := r.DB.QueryRowContext(ctx,
		`SELECT r.id, r.vehicle_id, r.account_id, r.title, r.body, r.rating, r.approved, r.created_at,
		        a.first_name, a.last_name, v.make, v.model, v.year
		 FROM reviews r
		 JOIN accounts a ON a.id = r.account_id
		 JOIN vehicles v ON v.id = r.vehicle_id
		 WHERE r.id=? LIMIT 1`, id).
		Scan(&rc.ID, &rc.VehicleID, &rc.AccountID, &rc.Title, &rc.Body, &rc.Rating,
			&rc.Approved, &rc.CreatedAt, &rc.ReviewerFirstName, &rc.ReviewerLastName,
			&rc.VehicleMake, &rc.VehicleModel, &rc.VehicleYear)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReviewWithContext{}, ErrNotFound
	}
	return rc, err
}

// Update rewrites the review content. Approval is deliberately not
// touched: an edited approved review stays approved until a moderator
// says otherwise.
func (r *ReviewRepo) Update(ctx context.Context, id uint64, title, body string, rating int) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET title=?, body=?, rating=? WHERE id=?",
		title, body, rating, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a review.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListByVehicle returns the approved reviews of a vehicle, newest
// first, with reviewer names for display. Pending reviews never appear
// here regardless of who is asking; owners find theirs via ListByAccount.
func (r *ReviewRepo) ListByVehicle(ctx context.Context, vehicleID uint64) ([]model.ReviewWithContext, error) {
	return r.queryReviews(ctx,
		`SELECT r.id, r.vehicle_id, r.account_id, r.title, r.body, r.rating, r.approved, r.created_at,
		        a.first_name, a.last_name, '', '', 0
		 FROM reviews r
		 JOIN accounts a ON a.id = r.account_id
		 WHERE r.vehicle_id=? AND r.approved=TRUE
		 ORDER BY r.created_at DESC, r.id DESC`, vehicleID)
}

// ListByAccount returns all of an account's reviews in every approval
// state, joined with the vehicle they describe, newest first.
func (r *ReviewRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.ReviewWithContext, error) {
	return r.queryReviews(ctx,
		`SELECT r.id, r.vehicle_id, r.account_id, r.title, r.body, r.rating, r.approved, r.created_at,
		        '', '', v.make, v.model, v.year
		 FROM reviews r
		 JOIN vehicles v ON v.id = r.vehicle_id
		 WHERE r.account_id=?
		 ORDER BY r.created_at DESC, r.id DESC`, accountID)
}

// ListAll returns every review with both joins for the moderation view.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]model.ReviewWithContext, error) {
	return r.queryReviews(ctx,
		`SELECT r.id, r.vehicle_id, r.account_id, r.title, r.body, r.rating, r.approved, r.created_at,
		        a.first_name, a.last_name, v.make, v.model, v.year
		 FROM reviews r
		 JOIN accounts a ON a.id = r.account_id
		 JOIN vehicles v ON v.id = r.vehicle_id
		 ORDER BY r.created_at DESC, r.id DESC`)
}

// ToggleApproval flips the moderation flag and returns the new state.
// The update and the read-back run in one transaction so concurrent
// toggles serialize on the row lock instead of reporting a stale state.
func (r *ReviewRepo) ToggleApproval(ctx context.Context, id uint64) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE reviews SET approved = NOT approved WHERE id=?", id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}
	var approved bool
	if err := tx.QueryRowContext(ctx, "SELECT approved FROM reviews WHERE id=?", id).Scan(&approved); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return approved, nil
}

func (r *ReviewRepo) queryReviews(ctx context.Context, q string, args ...any) ([]model.ReviewWithContext, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReviewWithContext
	for rows.Next() {
		var rc model.ReviewWithContext
		if err := rows.Scan(&rc.ID, &rc.VehicleID, &rc.AccountID, &rc.Title, &rc.Body,
			&rc.Rating, &rc.Approved, &rc.CreatedAt, &rc.ReviewerFirstName,
			&rc.ReviewerLastName, &rc.VehicleMake, &rc.VehicleModel, &rc.VehicleYear); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
