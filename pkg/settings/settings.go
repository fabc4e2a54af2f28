// Package settings persists the user editable settings record.
package settings

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kasuboski/simulcast/pkg/apperr"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

type Settings struct {
	DownloadFolder string `json:"downloadFolder" yaml:"downloadFolder" mapstructure:"downloadFolder" validate:"required"`
	FeedURL        string `json:"feedUrl" yaml:"feedUrl" mapstructure:"feedUrl" validate:"required,url"`
	ClientHost     string `json:"clientHost" yaml:"clientHost" mapstructure:"clientHost" validate:"required,url"`
	ClientUser     string `json:"clientUser" yaml:"clientUser" mapstructure:"clientUser"`
	ClientPassword string `json:"clientPassword" yaml:"clientPassword" mapstructure:"clientPassword"`
}

// Redacted hides the client password
func (s Settings) Redacted() Settings {
	if s.ClientPassword != "" {
		s.ClientPassword = redacted
	}
	return s
}

// Keys are the settings names accepted by Set
var Keys = []string{"downloadFolder", "feedUrl", "clientHost", "clientUser", "clientPassword"}

// Set assigns the named field
func (s *Settings) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "downloadfolder":
		s.DownloadFolder = value
	case "feedurl":
		s.FeedURL = value
	case "clienthost":
		s.ClientHost = value
	case "clientuser":
		s.ClientUser = value
	case "clientpassword":
		s.ClientPassword = value
	default:
		return apperr.NotFound("set setting", errors.New("unknown setting "+key))
	}
	return nil
}

func (s Settings) Validate() error {
	return validator.New().Struct(s)
}

// Store loads and saves settings as yaml. Missing keys fall back to defaults.
type Store struct {
	mu       sync.RWMutex
	path     string
	defaults Settings
	current  Settings
	fs       mio.FileIO
	locker   *mio.Locker
}

type Option func(*Store)

// WithFileIO overrides the file system implementation
func WithFileIO(f mio.FileIO) Option {
	return func(s *Store) {
		s.fs = f
	}
}

func New(path string, defaults Settings, opts ...Option) *Store {
	s := &Store{
		path:     path,
		defaults: defaults,
		current:  defaults,
		fs:       &mio.MediaFileSystem{},
		locker:   mio.NewLocker(path),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields the defaults.
func (s *Store) Load() (Settings, error) {
	v := s.viper()
	v.SetConfigFile(s.path)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, apperr.Persistence("load settings", err)
		}
	}

	var loaded Settings
	if err := v.Unmarshal(&loaded); err != nil {
		return Settings{}, apperr.Persistence("decode settings", err)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	return loaded, nil
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and persists next. On failure the current settings are unchanged.
func (s *Store) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	b, err := yaml.Marshal(next)
	if err != nil {
		return apperr.Persistence("encode settings", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.Persistence("save settings", err)
	}

	// the file holds the client password
	err = s.locker.WithLock(func() error {
		return s.fs.WriteFileAtomic(s.path, b, 0o600)
	})
	if err != nil {
		return apperr.Persistence("save settings", err)
	}

	s.current = next
	return nil
}

func (s *Store) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("downloadFolder", s.defaults.DownloadFolder)
	v.SetDefault("feedUrl", s.defaults.FeedURL)
	v.SetDefault("clientHost", s.defaults.ClientHost)
	v.SetDefault("clientUser", s.defaults.ClientUser)
	v.SetDefault("clientPassword", s.defaults.ClientPassword)
	return v
}
