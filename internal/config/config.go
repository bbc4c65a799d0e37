package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	XDGName = "scrapboard"
)

var (
	// Default is used for every key a config file leaves out.
	Default = Config{
		Directory:  filepath.Join(xdg.DataHome, XDGName, "boards"),
		Journal:    "",
		Listen:     ":8888",
		Advertise:  true,
		BoardName:  "ScrapBoard",
		LogLevel:   "info",
		InboxDepth: 64,
		Autosave:   1,
		UndoLimit:  100,
	}
)

type Config struct {
	Directory  string `yaml:"directory" validate:"required"`
	Journal    string `yaml:"journal" validate:""`
	Listen     string `yaml:"listen" validate:"required"`
	Advertise  bool   `yaml:"advertise"`
	BoardName  string `yaml:"boardName" validate:"required"`
	LogLevel   string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	InboxDepth int    `yaml:"inboxDepth" validate:"min=1"`
	Autosave   int    `yaml:"autosave" validate:"min=0"`
	UndoLimit  int    `yaml:"undoLimit" validate:"min=0"`
}

func NewFromReader(r io.Reader) (*Config, error) {
	c := Default

	bytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read Config: %w", err)
	}
	err = yaml.Unmarshal(bytes, &c)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal Config: %w", err)
	}

	validate := validator.New()
	err = validate.Struct(c)
	if err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	if c.Directory, err = homedir.Expand(c.Directory); err != nil {
		return nil, err
	}
	if c.Journal != "" {
		if c.Journal, err = homedir.Expand(c.Journal); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Load reads the config at path. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return NewFromReader(strings.NewReader(""))
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expanded)
	if os.IsNotExist(err) {
		return NewFromReader(strings.NewReader(""))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewFromReader(f)
}

// DefaultPath is the config file looked up when none is given.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(XDGName, "config.yaml"))
}

// JournalPath is where the command journal for board id lives.
func (c *Config) JournalPath(id int64) string {
	if c.Journal != "" {
		return c.Journal
	}
	return filepath.Join(c.Directory, fmt.Sprintf("%d.journal", id))
}
