package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain text password of every staff fixture.
const DefaultPassword = "lozinka123"

// StaffFixture is a user together with its profile
type StaffFixture struct {
	UserID       string
	ProfileID    string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	IsActive     bool
}

// PatientFixture represents test patient data
type PatientFixture struct {
	ID        string
	FirstName string
	LastName  string
	JMBG      string
	Phone     string
	Email     string
	IsActive  bool
}

// ItemFixture represents test inventory item data
type ItemFixture struct {
	ID            string
	CategoryID    string
	Name          string
	Supplier      string
	CurrentStock  int
	MinStockLevel int
}

// FixtureFactory builds unique test rows
type FixtureFactory struct {
	mu  sync.Mutex
	seq int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

func (f *FixtureFactory) nextSeq() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

var (
	passwordHashOnce sync.Once
	passwordHash     string
)

// hashedDefaultPassword hashes DefaultPassword once; bcrypt is slow on purpose.
func hashedDefaultPassword() string {
	passwordHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		passwordHash = string(hash)
	})
	return passwordHash
}

// Staff creates a staff fixture, a receptionist unless overridden
func (f *FixtureFactory) Staff(opts ...func(*StaffFixture)) StaffFixture {
	n := f.nextSeq()
	s := StaffFixture{
		UserID:       uuid.New().String(),
		ProfileID:    uuid.New().String(),
		Email:        fmt.Sprintf("osoblje%d@pulsmedic.test", n),
		PasswordHash: hashedDefaultPassword(),
		FullName:     fmt.Sprintf("Osoblje %d", n),
		Role:         "receptionist",
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithRole sets the staff role
func WithRole(role string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.Role = role
	}
}

// WithEmail sets the staff email
func WithEmail(email string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.Email = email
	}
}

// Inactive marks the staff profile as deactivated
func Inactive() func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.IsActive = false
	}
}

// Patient creates a patient fixture
func (f *FixtureFactory) Patient(opts ...func(*PatientFixture)) PatientFixture {
	n := f.nextSeq()
	p := PatientFixture{
		ID:        uuid.New().String(),
		FirstName: "Pacijent",
		LastName:  fmt.Sprintf("Broj%d", n),
		JMBG:      fmt.Sprintf("0101990%06d", n),
		Phone:     fmt.Sprintf("+38160%07d", n),
		Email:     fmt.Sprintf("pacijent%d@example.rs", n),
		IsActive:  true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithPatientName sets the patient name
func WithPatientName(first, last string) func(*PatientFixture) {
	return func(p *PatientFixture) {
		p.FirstName = first
		p.LastName = last
	}
}

// Item creates an inventory item fixture in the given category
func (f *FixtureFactory) Item(categoryID string, opts ...func(*ItemFixture)) ItemFixture {
	n := f.nextSeq()
	i := ItemFixture{
		ID:            uuid.New().String(),
		CategoryID:    categoryID,
		Name:          fmt.Sprintf("Artikal %d", n),
		Supplier:      "Galenika",
		CurrentStock:  100,
		MinStockLevel: 10,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

// WithStock sets current and minimum stock
func WithStock(current, min int) func(*ItemFixture) {
	return func(i *ItemFixture) {
		i.CurrentStock = current
		i.MinStockLevel = min
	}
}
