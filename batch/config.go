package batch

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/pressly/shotfit"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Dir      string `toml:"dir"`
	Pattern  string `toml:"pattern"`
	Size     string `toml:"size"`
	Suffix   string `toml:"suffix"`
	Engine   string `toml:"engine"`
	LogLevel string `toml:"log_level"`
	TmpDir   string `toml:"tmp_dir"`
	NoColor  bool   `toml:"no_color"`
	Stats    bool   `toml:"stats"`
	DryRun   bool   `toml:"dry_run"`

	// Set by Apply
	Target *shotfit.Rect `toml:"-"`
	Level  logrus.Level  `toml:"-"`
}

var (
	ErrNoConfigFile = errors.New("config file does not exist")

	DefaultConfig = Config{}
)

func init() {
	cf := Config{
		Dir:      ".",
		Pattern:  "IMG_*.PNG",
		Size:     "6.7",
		Suffix:   "_resized",
		Engine:   "native",
		LogLevel: "INFO",
	}

	DefaultConfig = cf
}

func NewConfig() *Config {
	cf := DefaultConfig
	return &cf
}

// NewConfigFromFile reads confFile, falling back to confEnv. With neither set
// the defaults are returned.
func NewConfigFromFile(confFile string, confEnv string) (*Config, error) {
	var err error

	if confFile == "" {
		confFile = confEnv
	}

	cf := NewConfig()
	if confFile == "" {
		return cf, nil
	}

	if _, err = os.Stat(confFile); os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNoConfigFile, confFile)
	}

	if _, err = toml.DecodeFile(confFile, cf); err != nil {
		return nil, errors.Wrapf(err, "config %s", confFile)
	}
	return cf, nil
}

func (cf *Config) Apply() (err error) {
	// target
	cf.Target, err = shotfit.ParseTarget(cf.Size)
	if err != nil {
		return err
	}

	// logging
	cf.Level, err = logrus.ParseLevel(strings.ToLower(cf.LogLevel))
	if err != nil {
		return errors.Wrap(err, "log_level")
	}

	if cf.Dir == "" {
		cf.Dir = "."
	}
	if cf.Pattern == "" {
		cf.Pattern = DefaultConfig.Pattern
	}
	if cf.Suffix == "" {
		cf.Suffix = DefaultConfig.Suffix
	}

	return nil
}

func (cf *Config) NewLogger() *logrus.Logger {
	lg := logrus.New()
	lg.SetLevel(cf.Level)
	lg.SetFormatter(&logrus.TextFormatter{DisableColors: cf.NoColor, FullTimestamp: true})
	return lg
}
