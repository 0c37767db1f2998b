package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "role", "login", "credential", "registered_at", "status",
}

// UserRepository implements ports.UserRepository
type UserRepository struct {
	g *Gateway
}

func NewUserRepository(g *Gateway) *UserRepository {
	return &UserRepository{g: g}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	id, err := r.g.insertReturningID(ctx, "create user", r.g.builder().
		Insert("users").
		Columns("first_name", "last_name", "email", "role", "login", "credential", "registered_at", "status").
		Values(u.FirstName, u.LastName, textOrNil(u.Email), string(u.Role), u.Login, u.CredentialHash,
			domain.FormatTimestamp(u.RegisteredAt), string(u.Status)))
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.findOne(ctx, sq.Eq{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	u, err := r.findOne(ctx, sq.Eq{"login": login})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user with login %q: %w", login, &domain.NotFoundError{Entity: "user"})
	}
	return u, err
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq) (*domain.User, error) {
	row, err := r.g.queryRowBuilder(ctx, "find user", r.g.builder().
		Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	n, err := r.g.execBuilder(ctx, "update user", r.g.builder().
		Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("email", textOrNil(u.Email)).
		Set("role", string(u.Role)).
		Set("login", u.Login).
		Set("credential", u.CredentialHash).
		Set("status", string(u.Status)).
		Where(sq.Eq{"id": u.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "user", ID: u.ID}
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	q := r.g.builder().Select(userColumns...).From("users").OrderBy("last_name", "first_name", "id")
	if filter.Role != nil {
		q = q.Where(sq.Eq{"role": string(*filter.Role)})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}

	rows, err := r.g.queryBuilder(ctx, "list users", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list users", err)
	}
	return out, nil
}

// Delete removes the user row only; reservations and access log entries stay.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.g.execBuilder(ctx, "delete user", r.g.builder().Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "user", ID: id}
	}
	return nil
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u            domain.User
		email        sql.NullString
		registeredAt string
	)
	if err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &email, &u.Role, &u.Login, &u.CredentialHash,
		&registeredAt, &u.Status); err != nil {
		return nil, translateError("scan user", err)
	}

	u.Email = stringPtr(email)
	t, err := parseTimestamp(registeredAt)
	if err != nil {
		return nil, err
	}
	u.RegisteredAt = t
	return &u, nil
}
