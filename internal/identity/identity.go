// Package identity supplies the persistent opaque player identifier.
// It is minted once per installation and reused on every connection,
// the way the browser client keeps it in local storage.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileName = "player_id"

// Load returns the persisted player id from dir, minting and saving a
// new one if none exists yet.
func Load(dir string) (string, error) {
	path := filepath.Join(dir, fileName)
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := Set(dir, id); err != nil {
		return "", err
	}
	return id, nil
}

// Set overwrites the persisted player id.
func Set(dir, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("identity: empty player id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("identity: create dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("identity: persist player id: %w", err)
	}
	return nil
}
