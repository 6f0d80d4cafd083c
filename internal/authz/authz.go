// Package authz decides which roles may call which API paths.
package authz

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"dropskills/internal/model"

	"github.com/casbin/casbin/v3"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

type Enforcer struct {
	e           *casbin.Enforcer
	adminEmails map[string]bool
}

// NewEnforcer loads the embedded model and policy. Users whose email is in
// adminEmails are treated as admins whatever their stored role.
func NewEnforcer(adminEmails []string) (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "dropskills-casbin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, err
	}

	emails := make(map[string]bool, len(adminEmails))
	for _, m := range adminEmails {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			emails[m] = true
		}
	}
	return &Enforcer{e: e, adminEmails: emails}, nil
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// Role returns the effective role from the stored role and the current
// admin allow-list.
func (e *Enforcer) Role(role, email string) string {
	if role == model.RoleAdmin || e.adminEmails[strings.ToLower(email)] {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (e *Enforcer) IsAdmin(role, email string) bool {
	return e.Role(role, email) == model.RoleAdmin
}

// Allow reports whether role may call method on path.
func (e *Enforcer) Allow(role, path, method string) (bool, error) {
	return e.e.Enforce(role, path, method)
}
