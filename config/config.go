package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Feed     Feed     `json:"feed" yaml:"feed" mapstructure:"feed"`
	Catalog  Catalog  `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Schedule Schedule `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Download Download `json:"download" yaml:"download" mapstructure:"download"`
	Tracked  Tracked  `json:"tracked" yaml:"tracked" mapstructure:"tracked"`
	Settings Settings `json:"settings" yaml:"settings" mapstructure:"settings"`
	Server   Server   `json:"server" yaml:"server" mapstructure:"server"`
	Manager  Manager  `json:"manager" yaml:"manager" mapstructure:"manager"`
}

// Feed is the release feed. URL is the default until overridden by persisted settings.
type Feed struct {
	URL        string `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`
	ReleaseTag string `json:"releaseTag" yaml:"releaseTag" mapstructure:"releaseTag" validate:"required"`
}

// Catalog configures series metadata lookups
type Catalog struct {
	URI            string        `json:"uri" yaml:"uri" mapstructure:"uri" validate:"required,url"`
	CacheDir       string        `json:"cacheDir" yaml:"cacheDir" mapstructure:"cacheDir" validate:"required"`
	CallsPerSecond float64       `json:"callsPerSecond" yaml:"callsPerSecond" mapstructure:"callsPerSecond" validate:"gt=0"`
	MaxAttempts    int           `json:"maxAttempts" yaml:"maxAttempts" mapstructure:"maxAttempts" validate:"gte=1"`
	Backoff        time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff" validate:"gte=0"`
	MaxRetries     int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries" validate:"gte=0"`
}

type Schedule struct {
	URI string `json:"uri" yaml:"uri" mapstructure:"uri" validate:"required,url"`
}

// Download configures the torrent client. Host and credentials are defaults for persisted settings.
type Download struct {
	Implementation string `json:"implementation" yaml:"implementation" mapstructure:"implementation" validate:"oneof=qbittorrent transmission"`
	Host           string `json:"host" yaml:"host" mapstructure:"host" validate:"required,url"`
	Username       string `json:"username" yaml:"username" mapstructure:"username"`
	Password       string `json:"password" yaml:"password" mapstructure:"password"`
	Category       string `json:"category" yaml:"category" mapstructure:"category"`
	Dir            string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

type Tracked struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath" validate:"required"`
}

type Settings struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath" validate:"required"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
}

// Manager houses configuration related to the manager and its poll cycles
type Manager struct {
	Jobs Jobs `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}

type Jobs struct {
	FeedPoll         time.Duration `json:"feedPoll" yaml:"feedPoll" mapstructure:"feedPoll" validate:"gt=0"`
	ScheduleRefresh  time.Duration `json:"scheduleRefresh" yaml:"scheduleRefresh" mapstructure:"scheduleRefresh" validate:"gt=0"`
	DownloadsRefresh time.Duration `json:"downloadsRefresh" yaml:"downloadsRefresh" mapstructure:"downloadsRefresh" validate:"gt=0"`
	ClientHealth     time.Duration `json:"clientHealth" yaml:"clientHealth" mapstructure:"clientHealth" validate:"gt=0"`
	AutoDownload     bool          `json:"autoDownload" yaml:"autoDownload" mapstructure:"autoDownload"`
	WatchDebounce    time.Duration `json:"watchDebounce" yaml:"watchDebounce" mapstructure:"watchDebounce" validate:"gte=0"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

// Validate checks field constraints
func (c Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}
