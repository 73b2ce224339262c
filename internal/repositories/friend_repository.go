package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrRequestExists   = errors.New("friend request already exists")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrAlreadyFriends  = errors.New("users are already friends")
)

// FriendRepository abstracts friend requests and the symmetric friend graph.
type FriendRepository interface {
	CreateRequest(ctx context.Context, fromUserID, toUserID int64) (models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID int64) (models.FriendRequest, error)
	RejectRequest(ctx context.Context, requestID int64) error
	ListFriends(ctx context.Context, userID int64) ([]models.PublicUser, error)
	ListPendingRequests(ctx context.Context, userID int64) ([]models.PendingRequest, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

var _ FriendRepository = (*FriendRepo)(nil)

// CreateRequest stores a pending request. The pre-checks give precise errors;
// the partial unique index on the pending pair decides races.
func (r *FriendRepo) CreateRequest(ctx context.Context, fromUserID, toUserID int64) (models.FriendRequest, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(
            SELECT 1 FROM friend_requests
            WHERE status='pending'
              AND ((from_user_id=$1 AND to_user_id=$2) OR (from_user_id=$2 AND to_user_id=$1)))`,
		fromUserID, toUserID)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("check pending request: %w", err)
	}
	if exists {
		return models.FriendRequest{}, ErrRequestExists
	}

	friends, err := r.AreFriends(ctx, fromUserID, toUserID)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return models.FriendRequest{}, ErrAlreadyFriends
	}

	var request models.FriendRequest
	err = r.db.QueryRowxContext(ctx, `INSERT INTO friend_requests (from_user_id, to_user_id)
        VALUES ($1, $2) RETURNING id, from_user_id, to_user_id, status, created_at`, fromUserID, toUserID).
		StructScan(&request)
	if isUniqueViolation(err) {
		return models.FriendRequest{}, ErrRequestExists
	}
	if err != nil {
		return models.FriendRequest{}, err
	}
	return request, nil
}

// AcceptRequest marks the request accepted and inserts both friend edges in
// one transaction. The caller is responsible for ensuring a private chat.
func (r *FriendRepo) AcceptRequest(ctx context.Context, requestID int64) (models.FriendRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var request models.FriendRequest
	err = tx.QueryRowxContext(ctx, `UPDATE friend_requests SET status=$1
        WHERE id=$2 AND status=$3
        RETURNING id, from_user_id, to_user_id, status, created_at`,
		models.RequestAccepted, requestID, models.RequestPending).
		StructScan(&request)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrRequestNotFound
	}
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("accept request: %w", err)
	}

	edges := `INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2), ($2, $1)
        ON CONFLICT (user_id, friend_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, edges, request.FromUserID, request.ToUserID); err != nil {
		return models.FriendRequest{}, fmt.Errorf("insert friend edges: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.FriendRequest{}, fmt.Errorf("commit: %w", err)
	}
	return request, nil
}

// RejectRequest deletes the request. Absent ids are a no-op.
func (r *FriendRepo) RejectRequest(ctx context.Context, requestID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests WHERE id=$1`, requestID)
	return err
}

// ListFriends returns friend profiles joined through the edge table.
func (r *FriendRepo) ListFriends(ctx context.Context, userID int64) ([]models.PublicUser, error) {
	query := `SELECT u.id, u.username, u.avatar, u.first_name, u.last_name, u.bio, u.is_online, u.last_seen, u.public_key
        FROM friendships f
        JOIN users u ON u.id = f.friend_id
        WHERE f.user_id = $1
        ORDER BY u.username`
	friends := []models.PublicUser{}
	err := r.db.SelectContext(ctx, &friends, query, userID)
	return friends, err
}

// ListPendingRequests returns requests addressed to the user with each
// sender's profile.
func (r *FriendRepo) ListPendingRequests(ctx context.Context, userID int64) ([]models.PendingRequest, error) {
	query := `SELECT fr.id, fr.from_user_id, fr.to_user_id, fr.created_at,
            u.username AS "sender.username", u.avatar AS "sender.avatar",
            u.first_name AS "sender.first_name", u.last_name AS "sender.last_name"
        FROM friend_requests fr
        JOIN users u ON u.id = fr.from_user_id
        WHERE fr.to_user_id = $1 AND fr.status = 'pending'
        ORDER BY fr.created_at`
	requests := []models.PendingRequest{}
	err := r.db.SelectContext(ctx, &requests, query, userID)
	return requests, err
}

// AreFriends reports whether an edge exists between the two users.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2)`, userID, otherID)
	return exists, err
}
