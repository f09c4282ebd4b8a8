package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/utils"
)

// ErrEmailExists is returned when an insert or profile update collides
// with the unique email key. Handlers must not tell the user which
// account already holds the address.
var ErrEmailExists = errors.New("email already exists")

// AccountRepo encapsulates all queries against the accounts table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = "id, first_name, last_name, email, password_hash, role, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	var role string
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Account{}, err
	}
	a.Role, err = model.ParseRole(role)
	return a, err
}

// Create hashes the password and inserts a new account with the given
// role, returning its ID. Registration passes model.RoleClient; the
// admin add-user form passes whichever role was selected.
func (r *AccountRepo) Create(ctx context.Context, firstName, lastName, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (first_name, last_name, email, password_hash, role) VALUES (?,?,?,?,?)",
		firstName, lastName, email, hash, string(role))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email. The returned
// account still carries its password hash; only the authenticate flow
// may call this, and it strips the hash before the account travels on.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	a, err := scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// UpdateProfile changes the self-editable fields. A collision on the
// email key is reported as ErrEmailExists.
func (r *AccountRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET first_name=?, last_name=?, email=? WHERE id=?",
		firstName, lastName, email, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(res)
}

// UpdatePassword rehashes and stores a new password.
func (r *AccountRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE accounts SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateAccount is the admin-side edit: name, email and role together.
func (r *AccountRepo) UpdateAccount(ctx context.Context, id uint64, firstName, lastName, email string, role model.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET first_name=?, last_name=?, email=?, role=? WHERE id=?",
		firstName, lastName, email, string(role), id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(res)
}

// Delete removes an account. Reviews authored by the account go with
// it via the FK cascade.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// List returns every account ordered by id, for the admin management view.
func (r *AccountRepo) List(ctx context.Context) ([]model.Account, error) {
	return r.queryAccounts(ctx, "SELECT "+accountCols+" FROM accounts ORDER BY id")
}

// ListByRole returns accounts holding exactly the given role.
func (r *AccountRepo) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	return r.queryAccounts(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE role=? ORDER BY id", string(role))
}

func (r *AccountRepo) queryAccounts(ctx context.Context, q string, args ...any) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
