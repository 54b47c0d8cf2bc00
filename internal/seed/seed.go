// Package seed fills an empty users collection with demo accounts.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/repository"
	"github.com/fyd-app/fyd-api/internal/service"
)

func intPtr(n int) *int { return &n }

// Users are the demo accounts.  Passwords are hashed on insert.
var Users = []service.CreateUserInput{
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Age: intPtr(30), Role: model.RoleAdmin, City: "Paris", Interests: []string{"Dance", "Sport"}},
	{Name: "John Doe", Email: "john@example.com", Password: "user123", Age: intPtr(25), Role: model.RoleUser, City: "Paris", Interests: []string{"Dance", "Sport"}},
	{Name: "Jane Smith", Email: "jane@example.com", Password: "user123", Age: intPtr(28), Role: model.RoleUser, City: "Paris", Interests: []string{"Dance", "Sport"}},
}

// Run inserts Users when the store is empty and returns how many were
// created.  A non-empty store is left untouched.
func Run(ctx context.Context, store repository.UserStore, users *service.UserService, logger *zap.Logger) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		logger.Info("users already present, skipping seed", zap.Int64("count", n))
		return 0, nil
	}
	for i, in := range Users {
		if _, err := users.CreateUser(ctx, in); err != nil {
			return i, fmt.Errorf("seed %s: %w", in.Email, err)
		}
	}
	logger.Info("seeded users", zap.Int("count", len(Users)))
	return len(Users), nil
}
