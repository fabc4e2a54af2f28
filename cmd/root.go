package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/kasuboski/simulcast/pkg/feed"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/kasuboski/simulcast/pkg/title"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simulcast",
	Short: "simulcast cli",
	Long: `simulcast follows a release feed, fetches series metadata, submits episodes to a
torrent client and reconciles the download folder with the client session.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

const (
	defaultPollInterval    = time.Minute * 5
	defaultRefreshInterval = time.Minute
)

func initConfig() {
	if _, err := os.Stat(cfgFile); err == nil {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix("SIMULCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("feed.url", feed.DefaultURL)
	viper.SetDefault("feed.releaseTag", title.DefaultTag)

	viper.SetDefault("catalog.uri", "https://api.jikan.moe/v4")
	viper.SetDefault("catalog.cacheDir", "image_cache")
	viper.SetDefault("catalog.callsPerSecond", 1)
	viper.SetDefault("catalog.maxAttempts", 3)
	viper.SetDefault("catalog.backoff", time.Second)
	viper.SetDefault("catalog.maxRetries", 3)

	viper.SetDefault("schedule.uri", schedule.DefaultURI)

	viper.SetDefault("download.implementation", "qbittorrent")
	viper.SetDefault("download.host", "http://127.0.0.1:8080")
	viper.SetDefault("download.username", "admin")
	viper.SetDefault("download.password", "adminadmin")
	viper.SetDefault("download.category", "Anime")
	viper.SetDefault("download.dir", "")

	viper.SetDefault("tracked.filePath", "tracked_anime.txt")
	viper.SetDefault("settings.filePath", "settings.yaml")

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("manager.jobs.feedPoll", defaultPollInterval)
	viper.SetDefault("manager.jobs.scheduleRefresh", defaultPollInterval)
	viper.SetDefault("manager.jobs.downloadsRefresh", defaultRefreshInterval)
	viper.SetDefault("manager.jobs.clientHealth", defaultRefreshInterval)
	viper.SetDefault("manager.jobs.autoDownload", false)
	viper.SetDefault("manager.jobs.watchDebounce", 2*time.Second)
}
