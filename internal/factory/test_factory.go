package factory

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mafiagame-go/internal/dependencies/mocks"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		AuthConfig: auth.Config{
			SessionDuration: 24 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
			InitialWallet:   100,
			AdminHandles:    []string{"root"},
		},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Close stops background game schedulers started during a test
func (t *TestApp) Close() {
	t.GameController.StopAll()
}
