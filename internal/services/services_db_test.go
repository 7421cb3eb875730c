package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/models"
)

type fixedWeather string

func (weather fixedWeather) Snapshot(context.Context) string {
	return string(weather)
}

func openServicesTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "agrosoft-services.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repositories, err := db.NewRepositories(database)
	if err != nil {
		t.Fatalf("build repositories: %v", err)
	}
	return repositories
}

func createServicesTestUser(t *testing.T, accounts *AuthService, username string, role string) models.User {
	t.Helper()

	user, err := accounts.CreateAccount(AccountInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "Cosecha2024",
		ConfirmPassword: "Cosecha2024",
		Role:            role,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	return user
}

func newServicesTestAuth(repositories *db.Repositories) *AuthService {
	return NewAuthService(repositories.Users, &mail.Recorder{}, "http://localhost:8080")
}

func TestResetPasswordTokenWorksOnceUnderConcurrentSubmissions(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	recorder := &mail.Recorder{}
	accounts := NewAuthService(repositories.Users, recorder, "http://localhost:8080")
	user := createServicesTestUser(t, accounts, "rosa", models.RoleFarmer)

	if err := accounts.RequestPasswordReset(context.Background(), "rosa"); err != nil {
		t.Fatalf("RequestPasswordReset() unexpected error: %v", err)
	}
	token := resetTokenFromMessage(t, recorder.Messages()[0])

	const submissions = 4
	passwords := []string{"primera01", "segunda02", "tercera03", "cuarta004"}
	results := make([]error, submissions)
	var wg sync.WaitGroup
	for index := range submissions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[index] = accounts.ResetPassword(token, passwords[index], passwords[index])
		}()
	}
	wg.Wait()

	winner := -1
	for index, err := range results {
		switch {
		case err == nil:
			if winner >= 0 {
				t.Fatalf("submissions %d and %d both consumed the token", winner, index)
			}
			winner = index
		case errors.Is(err, ErrPasswordResetTokenInvalid):
		default:
			t.Fatalf("submission %d: unexpected error %v", index, err)
		}
	}
	if winner < 0 {
		t.Fatal("expected one submission to reset the password")
	}

	if _, err := accounts.Authenticate("rosa", passwords[winner]); err != nil {
		t.Fatalf("expected the winning password to sign in: %v", err)
	}
	stored, err := repositories.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.ResetTokenHash != "" || stored.ResetTokenExpiresAt != nil {
		t.Fatal("expected the reset token to be burned")
	}
}

func TestConcurrentRegistrationsReportTakenUsername(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	accounts := newServicesTestAuth(repositories)

	const attempts = 4
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for index := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[index] = accounts.Register(AccountInput{
				Username:        "lucia",
				Email:           fmt.Sprintf("lucia%d@example.com", index),
				Password:        "Cosecha2024",
				ConfirmPassword: "Cosecha2024",
			})
		}()
	}
	wg.Wait()

	created := 0
	for index, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrUsernameTaken):
		default:
			t.Fatalf("registration %d: unexpected error %v", index, err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one account, got %d", created)
	}
}
