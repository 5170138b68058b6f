package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	AdminKey     string
	AdminKeyFile string
	Output       string
	NoColor      bool
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("COMMITTY_SERVER", "http://localhost:8080"),
		AdminKey:     os.Getenv("COMMITTY_ADMIN_KEY"),
		AdminKeyFile: getEnvOrDefault("COMMITTY_ADMIN_KEY_FILE", defaultAdminKeyFile()),
		Output:       "text",
		NoColor:      os.Getenv("NO_COLOR") != "",
		Verbose:      false,
	}
}

// LoadAdminKey loads the admin key from file if not already set
func (c *Config) LoadAdminKey() error {
	if c.AdminKey != "" {
		return nil
	}

	data, err := os.ReadFile(c.AdminKeyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Admin commands will be refused by the server
		}
		return err
	}

	c.AdminKey = strings.TrimSpace(string(data))
	return nil
}

// SaveAdminKey stores the admin key in the key file
func (c *Config) SaveAdminKey(key string) error {
	c.AdminKey = key

	dir := filepath.Dir(c.AdminKeyFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.AdminKeyFile, []byte(key), 0600)
}

func defaultAdminKeyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".committy/admin_key"
	}
	return filepath.Join(home, ".committy", "admin_key")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
