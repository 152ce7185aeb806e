package database

import (
	"context"
	"errors"
	"fmt"

	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var ErrNoPositions = errors.New("no positions found")

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, email, role, created_at`

	user := &models.User{PasswordHash: string(hash)}
	err = db.pool.QueryRow(ctx, query, req.Name, req.Email, string(req.Role), string(hash)).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := db.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

// Route Repository Implementation
func (db *PostgresDB) ListRoutes(ctx context.Context) ([]*models.Route, error) {
	query := `SELECT id, name, kind, waypoints, created_at FROM bus_routes ORDER BY id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		route := &models.Route{}
		if err := rows.Scan(&route.ID, &route.Name, &route.Kind, &route.Waypoints, &route.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	return routes, rows.Err()
}

func (db *PostgresDB) CreateRoute(ctx context.Context, req *models.CreateRouteRequest) (*models.Route, error) {
	query := `
		INSERT INTO bus_routes (name, kind, waypoints, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, kind, waypoints, created_at`

	route := &models.Route{}
	err := db.pool.QueryRow(ctx, query, req.Name, req.Kind, req.Waypoints).Scan(
		&route.ID, &route.Name, &route.Kind, &route.Waypoints, &route.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return route, nil
}

func (db *PostgresDB) GetRouteByID(ctx context.Context, id int) (*models.Route, error) {
	query := `SELECT id, name, kind, waypoints, created_at FROM bus_routes WHERE id = $1`

	route := &models.Route{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&route.ID, &route.Name, &route.Kind, &route.Waypoints, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return route, nil
}

// Position Repository Implementation
func (db *PostgresDB) UpsertPosition(ctx context.Context, record *models.PositionRecord) error {
	query := `
		INSERT INTO bus_positions (vehicle_id, route_id, latitude, longitude, speed, heading, accuracy, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (vehicle_id) DO UPDATE SET
			route_id = EXCLUDED.route_id,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			speed = EXCLUDED.speed,
			heading = EXCLUDED.heading,
			accuracy = EXCLUDED.accuracy,
			observed_at = EXCLUDED.observed_at`

	_, err := db.pool.Exec(ctx, query,
		record.VehicleID, record.RouteID, record.Latitude, record.Longitude,
		record.Speed, record.Heading, record.Accuracy, record.ObservedAt,
	)
	return err
}

func (db *PostgresDB) QueryLastPositions(ctx context.Context, routeID int) ([]*models.PositionRecord, error) {
	query := `
		SELECT vehicle_id, route_id, latitude, longitude, speed, heading, accuracy, observed_at
		FROM bus_positions
		WHERE route_id = $1`

	return db.scanPositions(ctx, query, routeID)
}

func (db *PostgresDB) AllLastPositions(ctx context.Context) ([]*models.PositionRecord, error) {
	query := `
		SELECT vehicle_id, route_id, latitude, longitude, speed, heading, accuracy, observed_at
		FROM bus_positions`

	return db.scanPositions(ctx, query)
}

func (db *PostgresDB) scanPositions(ctx context.Context, query string, args ...interface{}) ([]*models.PositionRecord, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PositionRecord
	for rows.Next() {
		record := &models.PositionRecord{}
		if err := rows.Scan(
			&record.VehicleID, &record.RouteID, &record.Latitude, &record.Longitude,
			&record.Speed, &record.Heading, &record.Accuracy, &record.ObservedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNoPositions
	}

	return records, nil
}

// Message Repository Implementation
func (db *PostgresDB) InsertMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (client_id, author_id, route_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := db.pool.Exec(ctx, query,
		message.ClientID, message.AuthorID, message.RouteID, message.Text, message.CreatedAt,
	)
	return err
}

func (db *PostgresDB) ListMessagesByRoute(ctx context.Context, routeID, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT m.id, m.client_id, m.author_id, COALESCE(u.name, ''), m.route_id, m.text, m.created_at
		FROM chat_messages m
		LEFT JOIN users u ON u.id = m.author_id
		WHERE m.route_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, routeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		if err := rows.Scan(
			&message.ID, &message.ClientID, &message.AuthorID, &message.AuthorName,
			&message.RouteID, &message.Text, &message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// Feedback Repository Implementation
func (db *PostgresDB) InsertFeedback(ctx context.Context, userID int, req *models.CreateFeedbackRequest) (*models.Feedback, error) {
	query := `
		INSERT INTO feedbacks (user_id, stars, comment, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, user_id, stars, comment, created_at`

	feedback := &models.Feedback{}
	err := db.pool.QueryRow(ctx, query, userID, req.Stars, req.Comment).Scan(
		&feedback.ID, &feedback.UserID, &feedback.Stars, &feedback.Comment, &feedback.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	return feedback, nil
}

func (db *PostgresDB) ListFeedback(ctx context.Context) ([]*models.Feedback, error) {
	query := `SELECT id, user_id, stars, COALESCE(comment, ''), created_at FROM feedbacks ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []*models.Feedback
	for rows.Next() {
		feedback := &models.Feedback{}
		if err := rows.Scan(&feedback.ID, &feedback.UserID, &feedback.Stars, &feedback.Comment, &feedback.CreatedAt); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, feedback)
	}

	return feedbacks, rows.Err()
}
