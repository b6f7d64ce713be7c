package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// The structs below are a snapshot of the schema at this migration version.
// They intentionally do not reference internal/models, which moves on.

type Candidate struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	Name             string    `gorm:"type:text;not null"`
	Age              *int      `gorm:"type:int"`
	FacilityName     string    `gorm:"type:text;not null"`
	FacilityLocation string    `gorm:"type:text;not null"`
	Biography        string    `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt        time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Facility struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Email     string    `gorm:"type:text;uniqueIndex;not null"`
	Location  string    `gorm:"type:text;not null"`
	TokenSent bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type VotingToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FacilityID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Token      string     `gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt  time.Time  `gorm:"type:timestamptz;not null"`
	Used       bool       `gorm:"not null;default:false"`
	UsedAt     *time.Time `gorm:"type:timestamptz"`
	IPAddress  string     `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Facility   Facility   `gorm:"foreignKey:FacilityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type NewsletterSubscription struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;uniqueIndex;not null"`
	GroupName    string     `gorm:"type:text;not null;default:''"`
	FacilityName string     `gorm:"type:text;not null;default:''"`
	Region       string     `gorm:"type:text;not null;default:''"`
	Confirmed    bool       `gorm:"not null;default:false"`
	ConfirmToken string     `gorm:"type:text;uniqueIndex;not null"`
	ConfirmedAt  *time.Time `gorm:"type:timestamptz"`
	HasVoted     bool       `gorm:"not null;default:false"`
	VotedAt      *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Vote struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	CandidateID int64     `gorm:"not null;index"`
	SessionID   string    `gorm:"type:text;not null;index"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Candidate   Candidate `gorm:"foreignKey:CandidateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type AuditLogEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Action     string         `gorm:"type:text;not null"`
	TargetType string         `gorm:"type:text;not null"`
	TargetID   *string        `gorm:"type:text"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;default:'{}'::jsonb"`
	IPAddress  string         `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Setting struct {
	Key       string    `gorm:"column:setting_key;type:text;primaryKey"`
	Value     string    `gorm:"column:setting_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func gormFromTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gormFromTx(tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Candidate{},
		&Facility{},
		&VotingToken{},
		&NewsletterSubscription{},
		&Vote{},
		&AuditLogEntry{},
		&Setting{},
		&Admin{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&VotingToken{}, "Facility"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Vote{}, "Candidate"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gormFromTx(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&Vote{},
		&VotingToken{},
		&AuditLogEntry{},
		&NewsletterSubscription{},
		&Facility{},
		&Candidate{},
		&Setting{},
		&Admin{},
	)
}
