package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/queue"
	"github.com/fyd-app/fyd-api/internal/repository"
	"github.com/fyd-app/fyd-api/internal/ticketing"
	"github.com/fyd-app/fyd-api/internal/validation"
)

const testSecret = "test-secret"

var testAuthConfig = AuthConfig{
	JWTSecret:  testSecret,
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 24 * time.Hour,
	BcryptCost: 10,
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []queue.SavedEventActivity
	err  error
}

func (p *recordingPublisher) PublishSavedEventActivity(_ context.Context, a queue.SavedEventActivity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, a)
	return p.err
}

type stubFetcher struct {
	events []model.ExternalEvent
	err    error
	got    ticketing.Query
}

func (f *stubFetcher) FetchEvents(_ context.Context, q ticketing.Query) ([]model.ExternalEvent, error) {
	f.got = q
	return f.events, f.err
}

var errProvider = errors.New("connection refused")

func newAuth(t *testing.T) (*AuthService, *repository.MemoryUserRepo) {
	t.Helper()
	repo := repository.NewMemoryUserRepo()
	return NewAuthService(testAuthConfig, repo, validation.New(), zap.NewNop()), repo
}

func newUsers(t *testing.T) (*UserService, *repository.MemoryUserRepo, *recordingPublisher) {
	t.Helper()
	repo := repository.NewMemoryUserRepo()
	pub := &recordingPublisher{}
	return NewUserService(repo, validation.New(), 10, pub, zap.NewNop()), repo, pub
}

func seedUser(t *testing.T, s *UserService, email string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), CreateUserInput{Name: "T", Email: email, Password: "p", City: "Paris"})
	require.NoError(t, err)
	return u
}
