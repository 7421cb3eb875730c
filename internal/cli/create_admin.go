package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
	"gorm.io/gorm"
)

// PasswordReader asks for a secret with the given prompt.
type PasswordReader func(prompt string) (string, error)

// RunCreateAdminCommand creates an administrator account. The password is
// asked twice through readPassword.
func RunCreateAdminCommand(database *gorm.DB, username string, email string, readPassword PasswordReader, out io.Writer) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
		return errors.New("usage: create-admin <username> <email>")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}

	authService := services.NewAuthService(db.NewUserRepository(database), &mail.LogMailer{}, "")
	user, err := authService.CreateAccount(services.AccountInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
		Role:            models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Administrator %s <%s> created\n", user.Username, user.Email)
	return nil
}

var errNotTerminal = errors.New("stdin is not a terminal")

// TerminalPasswordReader prompts on out and reads one line from stdin with
// echo disabled. Piped input is read as is.
func TerminalPasswordReader(stdin *os.File, out io.Writer) PasswordReader {
	reader := bufio.NewReader(stdin)
	readLine := func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" && errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		secret, err := withEchoDisabled(stdin, readLine)
		if errors.Is(err, errNotTerminal) {
			return readLine()
		}
		fmt.Fprintln(out)
		return secret, err
	}
}
