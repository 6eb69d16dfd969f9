package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neighborhood-app/backend/internal/apperr"
	"github.com/neighborhood-app/backend/internal/auth"
	"github.com/neighborhood-app/backend/internal/models"
)

// errInvalidCredentials is shared by the "no such user" and "wrong password"
// paths so callers cannot tell the two apart.
var errInvalidCredentials = fmt.Errorf("%w: Invalid username/password", apperr.ErrUnauthorized)

// UserStore handles user CRUD and the favorites relation against PostgreSQL.
type UserStore struct {
	db     *sql.DB
	hasher *auth.PasswordHasher
}

func NewUserStore(db *sql.DB, hasher *auth.PasswordHasher) *UserStore {
	return &UserStore{db: db, hasher: hasher}
}

// mapDBError translates driver errors into the app taxonomy. Unique
// constraint violations become ErrDuplicate; anything else unexpected is a
// storage fault.
func mapDBError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", apperr.ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
}

// Authenticate looks up a user by username and verifies the password.
// Unknown usernames and wrong passwords fail identically.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var (
		u      models.User
		hashed string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, first_name, last_name, email
		 FROM users
		 WHERE username = $1`, username,
	).Scan(&u.Username, &hashed, &u.FirstName, &u.LastName, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, mapDBError(err)
	}

	if !s.hasher.Verify(password, hashed) {
		return nil, errInvalidCredentials
	}
	return &u, nil
}

// Register creates a new user with a hashed password. The SELECT is only a
// fast path; the unique constraint on username is the authoritative guard,
// so a concurrent duplicate still surfaces as ErrDuplicate.
func (s *UserStore) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE username = $1`, req.Username,
	).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("%w: duplicate username: %s", apperr.ErrDuplicate, req.Username)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapDBError(err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var u models.User
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password, first_name, last_name, email)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, first_name, last_name, email`,
		req.Username, hashed, req.FirstName, req.LastName, req.Email,
	).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		return nil, mapDBError(err)
	}
	u.FavoritedProperties = []int64{}
	return &u, nil
}

// Get returns a user together with the zpids of every property they have
// favorited, in the order storage returns them.
func (s *UserStore) Get(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, first_name, last_name, email
		 FROM users
		 WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		return nil, mapDBError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT property_zpid FROM favorited_properties WHERE user_id = $1`, u.ID,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	u.FavoritedProperties = []int64{}
	for rows.Next() {
		var zpid int64
		if err := rows.Scan(&zpid); err != nil {
			return nil, mapDBError(err)
		}
		u.FavoritedProperties = append(u.FavoritedProperties, zpid)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return &u, nil
}

// Update applies a partial update. A password in the request is re-hashed
// before it reaches the database; the stored hash is never returned.
func (s *UserStore) Update(ctx context.Context, username string, req models.UpdateUserRequest) (*models.UserUpdated, error) {
	var fields []Field
	if req.FirstName != nil {
		fields = append(fields, Field{Name: "firstName", Value: *req.FirstName})
	}
	if req.LastName != nil {
		fields = append(fields, Field{Name: "lastName", Value: *req.LastName})
	}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: "password", Value: hashed})
	}
	if req.Email != nil {
		fields = append(fields, Field{Name: "email", Value: *req.Email})
	}

	setClause, args, err := BuildPartialUpdate(fields, map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
	})
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s
		 WHERE username = $%d
		 RETURNING username, first_name, last_name, email`,
		setClause, len(args)+1)
	args = append(args, username)

	var u models.UserUpdated
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &u, nil
}

// Remove deletes a user; favorites go with it via ON DELETE CASCADE.
func (s *UserStore) Remove(ctx context.Context, username string) error {
	var deleted string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM users WHERE username = $1 RETURNING username`, username,
	).Scan(&deleted)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

// resolveUserID maps a username to its surrogate key.
func (s *UserStore) resolveUserID(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1`, username,
	).Scan(&id)
	if err != nil {
		return 0, mapDBError(err)
	}
	return id, nil
}

// FavoriteProperty records that the user favorited the given zpid. There is
// no uniqueness constraint on the pair; favoriting twice inserts twice.
func (s *UserStore) FavoriteProperty(ctx context.Context, username string, zpid int64) error {
	id, err := s.resolveUserID(ctx, username)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO favorited_properties (user_id, property_zpid) VALUES ($1, $2)`,
		id, zpid,
	)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

// UnfavoriteProperty deletes any favorite rows for the pair. Deleting zero
// rows is a successful no-op.
func (s *UserStore) UnfavoriteProperty(ctx context.Context, username string, zpid int64) error {
	id, err := s.resolveUserID(ctx, username)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM favorited_properties WHERE user_id = $1 AND property_zpid = $2`,
		id, zpid,
	)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}
