package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"libportal/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const accessTokenKey = "access_token"

// CredentialRepository persists the single bearer token slot in the local
// state database.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Load returns "" when nothing is stored.
func (r *CredentialRepository) Load(ctx context.Context) (string, error) {
	var c domain.Credential
	err := r.db.WithContext(ctx).Where("name = ?", accessTokenKey).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.Token, nil
}

func (r *CredentialRepository) Save(ctx context.Context, token string) error {
	c := domain.Credential{Name: accessTokenKey, Token: token, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&c).Error
}

func (r *CredentialRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("name = ?", accessTokenKey).Delete(&domain.Credential{}).Error
}

// MemoryCredentialStore keeps the token in process memory only.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryCredentialStore(token string) *MemoryCredentialStore {
	return &MemoryCredentialStore{token: token}
}

func (m *MemoryCredentialStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryCredentialStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryCredentialStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
