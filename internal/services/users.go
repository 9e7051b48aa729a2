package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/pkg/models"
)

// UserService owns account creation and lookup.
type UserService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewUserService(db DatabaseQuerier, logger *logrus.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

const userColumns = `id, name, email, preferences, created_at`

// Create inserts a new user. A unique-constraint violation on email is
// surfaced as ErrDuplicateEmail so the handler can reject it as a client
// error.
func (s *UserService) Create(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	user := &models.User{
		ID:          uuid.New(),
		Name:        NormalizeText(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Preferences: req.Preferences,
		CreatedAt:   time.Now().UTC(),
	}
	if user.Preferences == nil {
		user.Preferences = map[string]interface{}{}
	}

	query := `
		INSERT INTO users (id, name, email, preferences, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.Preferences, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User created")

	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var u models.User
	err := s.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Preferences, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, userColumns)

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Preferences, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
