package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

var (
	ErrDuplicateUser = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

const uniqueViolation = "23505"

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	ListOthers(ctx context.Context, userID int64) ([]models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error
	SetOnlineStatus(ctx context.Context, userID int64, isOnline bool) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ UserRepository = (*UserRepo)(nil)

// Create stores a new account. The username unique constraint is the
// authoritative duplicate check.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, hashed_password, public_key, private_key, avatar, first_name, last_name, bio)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, is_online, last_seen, created_at`
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.HashedPassword, user.PublicKey, user.PrivateKey,
		user.Avatar, user.FirstName, user.LastName, user.Bio).
		Scan(&user.ID, &user.IsOnline, &user.LastSeen, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateUser
	}
	return err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByUsername fetches a user by exact, case-sensitive username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListOthers returns every user except the caller, public fields only.
func (r *UserRepo) ListOthers(ctx context.Context, userID int64) ([]models.PublicUser, error) {
	query := `SELECT id, username, avatar, first_name, last_name, bio, is_online, last_seen, public_key
        FROM users WHERE id <> $1 ORDER BY username`
	users := []models.PublicUser{}
	err := r.db.SelectContext(ctx, &users, query, userID)
	return users, err
}

// UpdateProfile applies only the fields present in update.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	add("first_name", update.FirstName)
	add("last_name", update.LastName)
	add("bio", update.Bio)
	add("avatar", update.Avatar)

	args = append(args, userID)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id=$` + strconv.Itoa(len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// SetOnlineStatus flips the online flag and bumps last_seen.
func (r *UserRepo) SetOnlineStatus(ctx context.Context, userID int64, isOnline bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_online=$1, last_seen=NOW() WHERE id=$2`, isOnline, userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func requireRow(res sql.Result, missing error) error {
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return missing
	}
	return nil
}
