package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned, wrapped, for every invalid configuration.
var ErrValidation = errors.New("invalid configuration")

// Validate checks struct constraints and the few rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if isHTTPURL(c.Store.URL) {
		return fmt.Errorf("%w: store.url must be a database file path or a postgres connection string, not an http(s) URL", ErrValidation)
	}

	if c.Store.Driver == "postgres" {
		if _, err := c.Store.DSN(); err != nil {
			return fmt.Errorf("%w: store.url: %v", ErrValidation, err)
		}
	}

	return nil
}

// DSN returns the connection string handed to the database driver. For
// postgres the store key is injected as the password.
func (s StoreConfig) DSN() (string, error) {
	if s.Driver != "postgres" || s.Key == "" {
		return s.URL, nil
	}

	if !strings.Contains(s.URL, "://") {
		// key=value form
		return s.URL + " password='" + keyValueEscaper.Replace(s.Key) + "'", nil
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("parse postgres url: %w", err)
	}
	if u.Host == "" {
		return "", errors.New("postgres url has no host")
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, s.Key)
	return u.String(), nil
}

// keyValueEscaper quotes a value for a libpq key=value connection string.
var keyValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func isHTTPURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
