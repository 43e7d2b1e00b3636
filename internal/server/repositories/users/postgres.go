package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextRepr   = "22P02"
	emailConstraint     = "users_email_key"
	usernameConstraint  = "users_username_key"
	selectUserColumns   = `SELECT id, username, email, password_hash, active, created_at FROM users`
	returningUserColumn = `RETURNING id, username, email, password_hash, active, created_at`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, active)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, user.Active).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, mapError(err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE username = $1`, userName)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE id = $1`, id)
}

// Update applies the non-nil fields of patch and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var email, active any
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.Active != nil {
		active = *patch.Active
	}

	query := `UPDATE users SET email = COALESCE($2, email), active = COALESCE($3, active)
		 WHERE id = $1
		 ` + returningUserColumn

	return r.getOne(ctx, query, id, email, active)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.Active, &user.CreatedAt)

	if err != nil {
		return nil, mapError(err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// mapError translates driver errors into the common sentinels. A malformed
// UUID can never match a row, so it reads as not found.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == emailConstraint:
			return common.ErrDuplicateEmail
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == usernameConstraint:
			return common.ErrDuplicateUsername
		case pgErr.Code == pgInvalidTextRepr:
			return common.ErrorNotFound
		}
	}

	return fmt.Errorf("db error: %w", err)
}
