package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securelogin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/attempts"
)

// MemoryRepositoryManager keeps everything in process memory. It backs local
// runs and service tests.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
	attempts *attempts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		attempts: attempts.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Attempts() attempts.Repository { return m.attempts }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
