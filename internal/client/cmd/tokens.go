package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"todoapi/internal/shared/models"
)

func tokenPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".todoctl_token")
}

func refreshPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".todoctl_refresh")
}

func saveTokens(pair models.TokenResponse) error {
	if err := os.WriteFile(tokenPath(), []byte(pair.AccessToken), 0600); err != nil {
		return err
	}
	return os.WriteFile(refreshPath(), []byte(pair.RefreshToken), 0600)
}

func loadToken() (string, error)   { return readTrimmed(tokenPath()) }
func loadRefresh() (string, error) { return readTrimmed(refreshPath()) }

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
