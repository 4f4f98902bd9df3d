// Package sqldb provides database operations for the contact service.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"

	"github.com/contactdesk/contact-service/internal/sdk/models"
)

// Postgres error codes.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

var (
	ErrDBNotFound          = sql.ErrNoRows
	ErrDBDuplicatedEntry   = errors.New("duplicated entry")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	// Migrate applies pending schema migrations.
	Migrate() error

	// User operations
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error)
	LinkGoogleID(ctx context.Context, userID, googleID string) (models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error)

	// Contact operations. Every mutation is scoped to the owning user; a
	// contact id belonging to someone else behaves exactly like a missing row.
	ListContactsByOwner(ctx context.Context, ownerID string) ([]models.Contact, error)
	CreateContact(ctx context.Context, contact models.NewContact) (models.Contact, error)
	GetContactByID(ctx context.Context, ownerID, contactID string) (models.Contact, error)
	UpdateContact(ctx context.Context, ownerID, contactID string, patch models.ContactPatch) (models.Contact, error)
	DeleteContact(ctx context.Context, ownerID, contactID string) error
	SetContactPhoto(ctx context.Context, ownerID, contactID string, objectName *string) (models.Contact, error)
}

type service struct {
	db *sql.DB
}

var (
	database   = os.Getenv("CONTACTS_DB_DATABASE")
	password   = os.Getenv("CONTACTS_DB_PASSWORD")
	username   = os.Getenv("CONTACTS_DB_USERNAME")
	port       = os.Getenv("CONTACTS_DB_PORT")
	host       = os.Getenv("CONTACTS_DB_HOST")
	schema     = os.Getenv("CONTACTS_DB_SCHEMA")
	dbInstance *service
)

func New() Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s", username, password, host, port, database, schema)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatal(err)
	}
	dbInstance = &service{
		db: db,
	}
	return dbInstance
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	log.Printf("Disconnected from database: %s", database)
	return s.db.Close()
}

// ---------------------------------------------
// User operations
// ---------------------------------------------

const userColumns = `
	id,
	name,
	email,
	password,
	google_id,
	created_at,
	updated_at
`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.GoogleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// CreateUser inserts a new user. A unique violation on email maps to
// ErrDBDuplicatedEntry; a check violation (no auth method) to ErrCheckViolation.
func (s *service) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, password, google_id)
		VALUES ($1, $2, $3, $4)
		RETURNING` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		nu.Name,
		nu.Email,
		nu.Password,
		nu.GoogleID,
	))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		if isPgError(err, checkViolation) {
			return models.User{}, ErrCheckViolation
		}
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *service) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	const query = `SELECT` + userColumns + `FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address
func (s *service) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT` + userColumns + `FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return user, nil
}

// GetUserByGoogleID retrieves a user by their linked Google account id
func (s *service) GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	const query = `SELECT` + userColumns + `FROM users WHERE google_id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, googleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by google id: %w", err)
	}

	return user, nil
}

// LinkGoogleID attaches a Google account id to an existing user
func (s *service) LinkGoogleID(ctx context.Context, userID, googleID string) (models.User, error) {
	const query = `
		UPDATE users
		SET google_id = $2,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID, googleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		if isPgError(err, uniqueViolation) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		return models.User{}, fmt.Errorf("linking google id: %w", err)
	}

	return user, nil
}

// ListUsers retrieves one page of users plus the total count.
func (s *service) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	const query = `SELECT` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating users: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	return users, total, nil
}

// ---------------------------------------------
// Contact operations
// ---------------------------------------------

const contactColumns = `
	id,
	user_id,
	name,
	email,
	phone,
	age,
	secondary_phone,
	photo_object,
	created_at,
	updated_at
`

func scanContact(row interface{ Scan(...any) error }) (models.Contact, error) {
	var contact models.Contact
	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.Age,
		&contact.SecondaryPhone,
		&contact.PhotoObject,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	return contact, err
}

// ListContactsByOwner retrieves all contacts owned by ownerID, newest first
func (s *service) ListContactsByOwner(ctx context.Context, ownerID string) ([]models.Contact, error) {
	const query = `SELECT` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}

	return contacts, nil
}

// CreateContact inserts a new contact owned by contact.UserID
func (s *service) CreateContact(ctx context.Context, nc models.NewContact) (models.Contact, error) {
	const query = `
		INSERT INTO contacts (user_id, name, email, phone, age, secondary_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + contactColumns

	contact, err := scanContact(s.db.QueryRowContext(ctx, query,
		nc.UserID,
		nc.Name,
		nc.Email,
		nc.Phone,
		nc.Age,
		nc.SecondaryPhone,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return models.Contact{}, ErrForeignKeyViolation
		}
		return models.Contact{}, fmt.Errorf("creating contact: %w", err)
	}

	return contact, nil
}

// GetContactByID retrieves a contact only if it is owned by ownerID
func (s *service) GetContactByID(ctx context.Context, ownerID, contactID string) (models.Contact, error) {
	const query = `SELECT` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`

	contact, err := scanContact(s.db.QueryRowContext(ctx, query, contactID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, ErrDBNotFound
		}
		return models.Contact{}, fmt.Errorf("selecting contact: %w", err)
	}

	return contact, nil
}

// UpdateContact merges the non-nil patch fields into the contact. The owner
// check is part of the WHERE clause, so a cross-user update reports not found.
func (s *service) UpdateContact(ctx context.Context, ownerID, contactID string, patch models.ContactPatch) (models.Contact, error) {
	const query = `
		UPDATE contacts
		SET name            = COALESCE($3, name),
		    email           = COALESCE($4, email),
		    phone           = COALESCE($5, phone),
		    age             = COALESCE($6, age),
		    secondary_phone = COALESCE($7, secondary_phone),
		    updated_at      = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING` + contactColumns

	contact, err := scanContact(s.db.QueryRowContext(ctx, query,
		contactID,
		ownerID,
		patch.Name,
		patch.Email,
		patch.Phone,
		patch.Age,
		patch.SecondaryPhone,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, ErrDBNotFound
		}
		return models.Contact{}, fmt.Errorf("updating contact: %w", err)
	}

	return contact, nil
}

// DeleteContact removes a contact owned by ownerID
func (s *service) DeleteContact(ctx context.Context, ownerID, contactID string) error {
	const query = `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, contactID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDBNotFound
	}

	return nil
}

// SetContactPhoto stores the photo object key for a contact; nil clears it
func (s *service) SetContactPhoto(ctx context.Context, ownerID, contactID string, objectName *string) (models.Contact, error) {
	const query = `
		UPDATE contacts
		SET photo_object = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING` + contactColumns

	contact, err := scanContact(s.db.QueryRowContext(ctx, query, contactID, ownerID, objectName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, ErrDBNotFound
		}
		return models.Contact{}, fmt.Errorf("setting contact photo: %w", err)
	}

	return contact, nil
}

// ---------------------------------------------
// Helpers
// ---------------------------------------------

// isPgError checks if the error is a PostgreSQL error with the given code
func isPgError(err error, code string) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDBNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDBDuplicatedEntry)
}
