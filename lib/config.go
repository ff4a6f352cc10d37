package lib

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/richardtsai/subnetcalc/db"
	"gopkg.in/yaml.v2"
)

// Config contains the configuration of a subnetcalc service.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	DB       *db.Config     `yaml:"db"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Server   ServerConfig   `yaml:"server"`
	Misc     MiscConfig     `yaml:"misc"`
}

// LoggingConfig contains configuration about logging.
type LoggingConfig struct {
	File   string `yaml:"file"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultsConfig describes the network shown when a request carries no
// bookmark.
type DefaultsConfig struct {
	Network      string `yaml:"network"`
	Mask         *int   `yaml:"mask"`
	Columns      string `yaml:"cols"`
	ReserveFront string `yaml:"rf"`
	ReserveEnd   string `yaml:"re"`
	Name         string `yaml:"name"`
}

// ServerConfig contains configuration about the HTTP API.
type ServerConfig struct {
	Listen   string `yaml:"listen"`
	LinkBase string `yaml:"link_base"`
}

// MiscConfig contains configuration that doesn't fall into any of above.
type MiscConfig struct {
	PProfAddr string `yaml:"pprof_addr"`
}

const (
	defaultNetwork  = "192.168.0.0"
	defaultMask     = 24
	defaultListen   = "127.0.0.1:8080"
	defaultLinkBase = "index.html"
)

// State builds the initial state described by the defaults.
func (c DefaultsConfig) State() (*State, error) {
	network := c.Network
	if network == "" {
		network = defaultNetwork
	}
	addr, err := ParseAddr(network)
	if err != nil {
		return nil, errors.WithMessage(err, "defaults.network")
	}
	mask := defaultMask
	if c.Mask != nil {
		mask = *c.Mask
	}
	if err = CheckMask(mask); err != nil {
		return nil, errors.WithMessage(err, "defaults.mask")
	}

	s := NewState(addr, mask)
	if c.Columns != "" {
		if s.Columns, err = DecodeColumns(c.Columns); err != nil {
			return nil, errors.WithMessage(err, "defaults.cols")
		}
	}
	if c.ReserveFront != "" {
		s.ReserveFront = ParseReserve(c.ReserveFront)
	}
	if c.ReserveEnd != "" {
		s.ReserveEnd = ParseReserve(c.ReserveEnd)
	}
	s.Name = c.Name
	return s, nil
}

// ListenAddr returns the configured listen address or the default one.
func (c ServerConfig) ListenAddr() string {
	if c.Listen == "" {
		return defaultListen
	}
	return c.Listen
}

// Link returns the page bookmark links point to.
func (c ServerConfig) Link() string {
	if c.LinkBase == "" {
		return defaultLinkBase
	}
	return c.LinkBase
}

// ParseConfigFile parses a given configuration file into a Config struct.
// If an empty string is given, the configuration file will be searched
// in some default locations.
func ParseConfigFile(configFile string) (*Config, error) {
	var err error
	if configFile == "" {
		if configFile, err = getDefaultConfigFile(); err != nil {
			return nil, err
		}
	}

	configData, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseConfig(configData)
}

// ParseConfig parses YAML configuration data. Unknown keys are errors.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	return &config, nil
}

func getDefaultConfigFile() (string, error) {
	candidates := []string{
		"subnetcalc.yml",
		filepath.Join(GetHomePath(), ".subnetcalc.yml"),
	}
	if runtime.GOOS != "windows" {
		candidates = append(candidates,
			"/usr/local/etc/subnetcalc.yml",
			"/usr/local/etc/subnetcalc/config.yml",
			"/usr/etc/subnetcalc.yml",
			"/usr/etc/subnetcalc/config.yml")
	}
	for _, c := range candidates {
		if s, err := os.Stat(c); err == nil && s.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", errors.New("no config file found in the default locations")
}
