package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite connects to the shared, migrated test container.
//
// Usage:
//
//	func TestPatientLifecycle(t *testing.T) {
//	    testutil.SkipIfShort(t)
//	    suite := testutil.NewIntegrationSuite(t)
//	    staff := suite.InsertStaff(t, suite.Fixtures.Staff())
//	    ...
//	}
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	t.Helper()
	ctx := context.Background()

	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
	})
	if containerErr != nil {
		t.Fatalf("failed to start test database: %v", containerErr)
	}

	log := logger.Nop()
	db, err := database.NewWithDSN(globalContainer.DSN, log)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	s := &IntegrationSuite{
		Container: globalContainer,
		DB:        db,
		Fixtures:  NewFixtureFactory(),
		Logger:    log,
	}
	s.Truncate(t)
	t.Cleanup(func() { db.Close() })

	return s
}

// Truncate empties every application table so each test starts clean.
func (s *IntegrationSuite) Truncate(t *testing.T) {
	t.Helper()
	_, err := s.DB.Exec(`TRUNCATE inventory_transactions, inventory_items, inventory_categories,
		calendar_permissions, appointments, patients, sessions, profiles, users CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// InsertStaff writes a user and its profile
func (s *IntegrationSuite) InsertStaff(t *testing.T, f StaffFixture) StaffFixture {
	t.Helper()
	s.mustExec(t, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		f.UserID, f.Email, f.PasswordHash)
	s.mustExec(t, `INSERT INTO profiles (id, user_id, email, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ProfileID, f.UserID, f.Email, f.FullName, f.Role, f.IsActive)
	return f
}

// InsertPatient writes a patient row
func (s *IntegrationSuite) InsertPatient(t *testing.T, f PatientFixture) PatientFixture {
	t.Helper()
	s.mustExec(t, `INSERT INTO patients (id, first_name, last_name, jmbg, phone, email, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.FirstName, f.LastName, f.JMBG, f.Phone, f.Email, f.IsActive)
	return f
}

// InsertCategory writes an inventory category and returns its id
func (s *IntegrationSuite) InsertCategory(t *testing.T, name string) string {
	t.Helper()
	var id string
	if err := s.DB.Get(&id, `INSERT INTO inventory_categories (name) VALUES ($1) RETURNING id`, name); err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}
	return id
}

// InsertItem writes an inventory item
func (s *IntegrationSuite) InsertItem(t *testing.T, f ItemFixture) ItemFixture {
	t.Helper()
	s.mustExec(t, `INSERT INTO inventory_items (id, category_id, name, supplier, current_stock, min_stock_level)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.CategoryID, f.Name, f.Supplier, f.CurrentStock, f.MinStockLevel)
	return f
}

func (s *IntegrationSuite) mustExec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	if _, err := s.DB.Exec(query, args...); err != nil {
		t.Fatalf("fixture insert failed: %v", err)
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}
