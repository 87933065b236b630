package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// ProviderGitHub is the only hosting provider with a registered object-graph implementation.
	ProviderGitHub = "github"

	DefaultTimeout = 60 * time.Second
	DefaultRetries = 2
)

// Settings is the full configuration of a publish run. It is built once at the
// process boundary (file, environment, flags) and passed down explicitly.
type Settings struct {
	Provider      string        `yaml:"provider"`
	APIURL        string        `yaml:"api_url"`
	Owner         string        `yaml:"owner"`
	Repository    string        `yaml:"repository"`
	Branch        string        `yaml:"branch"`
	FilePath      string        `yaml:"file_path"`
	TargetPath    string        `yaml:"target_path"`
	CommitMessage string        `yaml:"commit_message"`
	Token         string        `yaml:"token"` // Inline, ${ENV_VAR}, or file path
	App           AppSettings   `yaml:"app"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	DryRun        bool          `yaml:"-"`
}

// AppSettings is the application identity exchanged for an installation token.
type AppSettings struct {
	ID             int64  `yaml:"id"`
	PrivateKey     string `yaml:"private_key"` // PEM, ${ENV_VAR}, or file path
	InstallationID int64  `yaml:"installation_id"`
}

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns settings with every optional value at its default.
func DefaultSettings() *Settings {
	return &Settings{
		Provider: ProviderGitHub,
		Timeout:  DefaultTimeout,
		Retries:  DefaultRetries,
	}
}

// NewSettings loads settings from a YAML file on top of the defaults.
// An empty path yields the defaults.
func NewSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file %q: %w", ErrConfiguration, path, err)
	}

	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", ErrConfiguration, unmarshalErr)
	}

	return settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		".github",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".manifestpush.yaml",
		".manifestpush.yml",
		"manifestpush.yaml",
		"manifestpush.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ApplyEnv overlays values from the environment. Variable names follow the
// GitHub Actions conventions so the tool runs unchanged inside a workflow.
func (s *Settings) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get("GITHUB_API_URL"); v != "" {
		s.APIURL = v
	}
	if v := get("GITHUB_REPOSITORY"); v != "" {
		s.SetRepository(v)
	}
	if v := get("GITHUB_REPOSITORY_OWNER"); v != "" {
		s.Owner = v
	}
	if v := get("GITHUB_REF_NAME"); v != "" {
		s.Branch = v
	}
	if v := get("MANIFEST_PATH"); v != "" {
		s.FilePath = v
	}
	if v := get("MANIFESTPUSH_TARGET_PATH"); v != "" {
		s.TargetPath = v
	}
	if v, ok := lookup("COMMIT_MESSAGE"); ok && v != "" {
		s.CommitMessage = v
	}

	if v := get("GITHUB_TOKEN"); v != "" {
		s.Token = v
	} else if v = get("GH_TOKEN"); v != "" {
		s.Token = v
	}
	if v, ok := lookup("APP_PRIVATE_KEY"); ok && v != "" {
		s.App.PrivateKey = v
	}

	if err := parseEnvInt(get("APP_ID"), "APP_ID", &s.App.ID); err != nil {
		return err
	}
	if err := parseEnvInt(get("INSTALLATION_ID"), "INSTALLATION_ID", &s.App.InstallationID); err != nil {
		return err
	}

	if v := get("MANIFESTPUSH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: MANIFESTPUSH_TIMEOUT: %w", ErrConfiguration, err)
		}
		s.Timeout = d
	}
	if v := get("MANIFESTPUSH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MANIFESTPUSH_RETRIES: %w", ErrConfiguration, err)
		}
		s.Retries = n
	}

	return nil
}

// SetRepository accepts either "owner/name" or a bare repository name.
func (s *Settings) SetRepository(value string) {
	owner, name, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		s.Repository = owner
		return
	}
	if owner != "" {
		s.Owner = owner
	}
	s.Repository = strings.TrimSuffix(name, ".git")
}

// ResolveSecrets expands ${ENV_VAR} references in the token and private key
// and, when the result is a path to an existing file, reads the secret from it.
func (s *Settings) ResolveSecrets(lookup LookupFunc) {
	s.Token = resolveSecret(s.Token, lookup)
	key := resolveSecret(s.App.PrivateKey, lookup)
	// keys pasted into CI variables often carry escaped newlines
	s.App.PrivateKey = strings.ReplaceAll(key, `\n`, "\n")
}

// UsesAppAuth reports whether the application identity is configured.
func (s *Settings) UsesAppAuth() bool {
	return s.App.ID != 0 && s.App.PrivateKey != ""
}

// RepositoryRef returns the target repository.
func (s *Settings) RepositoryRef() RepositoryRef {
	return RepositoryRef{Owner: s.Owner, Name: s.Repository}
}

// RepoPath is the path the file is published under. It defaults to the local file path.
func (s *Settings) RepoPath() string {
	if s.TargetPath != "" {
		return NormalizeRepoPath(s.TargetPath)
	}
	return NormalizeRepoPath(s.FilePath)
}

// Validate checks for required configuration values.
func (s *Settings) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"owner", s.Owner},
		{"repository", s.Repository},
		{"file path", s.FilePath},
		{"commit message", s.CommitMessage},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrConfiguration, r.name)
		}
	}

	// without a target path the local path is reused inside the repository,
	// where an absolute runner path has no meaning
	if s.TargetPath == "" && isAbsPath(s.FilePath) {
		return fmt.Errorf(
			"%w: file path %q is absolute; set a target path inside the repository",
			ErrConfiguration, s.FilePath,
		)
	}

	if s.RepoPath() == "" || strings.HasPrefix(s.RepoPath(), "../") || s.RepoPath() == ".." {
		return fmt.Errorf("%w: %q is not a valid repository path", ErrConfiguration, s.RepoPath())
	}

	if !s.UsesAppAuth() && s.Token == "" {
		return fmt.Errorf(
			"%w: no credentials; set APP_ID and APP_PRIVATE_KEY, or GITHUB_TOKEN",
			ErrConfiguration,
		)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrConfiguration)
	}
	if s.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrConfiguration)
	}

	return nil
}

func resolveSecret(raw string, lookup LookupFunc) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := lookup(varName); ok && val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// PEM contents contain newlines and are never a path
	if strings.Contains(resolved, "\n") {
		return resolved
	}

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Debugf("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// isAbsPath reports absolute paths in host form and in slash form, so that
// "/home/runner/x" and `C:\work\x` are caught on every platform.
func isAbsPath(p string) bool {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

func parseEnvInt(raw, name string, out *int64) error {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s must be numeric: %w", ErrConfiguration, name, err)
	}
	*out = n
	return nil
}
