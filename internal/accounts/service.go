package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shekelsync/shekelsync/internal/model"
)

// SnapshotFile is the ledger account snapshot, relative to the data dir.
const SnapshotFile = "accounts/ledger-accounts.csv"

// Service provides in-memory lookup over a snapshot of ledger accounts.
type Service struct {
	accounts []model.LedgerAccount
	byID     map[string]model.LedgerAccount
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.LedgerAccount) *Service {
	byID := make(map[string]model.LedgerAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads the account snapshot under dataDir and returns a Service.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, SnapshotFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account snapshot: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading account snapshot: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.LedgerAccount {
	return s.accounts
}

// Open returns accounts that are not closed.
func (s *Service) Open() []model.LedgerAccount {
	var result []model.LedgerAccount
	for _, a := range s.accounts {
		if !a.Closed {
			result = append(result, a)
		}
	}
	return result
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.LedgerAccount, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Resolve finds an account by ID, or else by case-insensitive name.
func (s *Service) Resolve(ref string) (model.LedgerAccount, bool) {
	if a, ok := s.byID[ref]; ok {
		return a, true
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	return model.LedgerAccount{}, false
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.LedgerAccount {
	var result []model.LedgerAccount
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the snapshot to <dataDir>/accounts/ledger-accounts.csv.
func (s *Service) Save(dataDir string) error {
	path := filepath.Join(dataDir, SnapshotFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account snapshot file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing account snapshot: %w", err)
	}
	return nil
}
