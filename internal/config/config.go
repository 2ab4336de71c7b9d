package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/web"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingSetting = errors.New("missing setting")
	ErrUnknownProject = errors.New("unknown project")
)

const currentProjectFile = "current_project"

type Config struct {
	Logging        Logging            `yaml:"logging"`
	Loco           Loco               `yaml:"loco"`
	Global         Global             `yaml:"global"`
	DefaultProject string             `yaml:"defaultProject"`
	Projects       map[string]Project `yaml:"projects"`

	path string
}

type Logging struct {
	Level string `yaml:"level"`
}

func (l Logging) LevelOrDefault() string {
	level := strings.TrimSpace(l.Level)
	if level == "" {
		level = "INFO"
	}

	return strings.ToLower(level)
}

type Global struct {
	CoreKey string `yaml:"coreKey"`
}

type Project struct {
	ProjectRoot string `yaml:"projectRoot"`
	LocoKey     string `yaml:"locoKey"`
	Tag         string `yaml:"tag"`
}

type Loco struct {
	BaseURL      string     `yaml:"baseUrl"`
	BaseTag      string     `yaml:"baseTag"`
	Indent       string     `yaml:"indent"`
	ScratchDir   string     `yaml:"scratchDir"`
	ValueFolders []string   `yaml:"valueFolders"`
	IgnoredIDs   []string   `yaml:"ignoredIds"`
	Client       web.Config `yaml:"client"`
	Validation   Validation `yaml:"validation"`
}

func (l Loco) BaseURLOrDefault() string {
	u := strings.TrimSpace(l.BaseURL)
	if u == "" {
		return "https://localise.biz/api"
	}

	return strings.TrimSuffix(u, "/")
}

func (l Loco) BaseTagOrDefault() string {
	if strings.TrimSpace(l.BaseTag) == "" {
		return "android"
	}

	return l.BaseTag
}

// IndentOrDefault returns the indentation used for written resource files. The remote
// archive ships with two spaces, project files use four.
func (l Loco) IndentOrDefault() string {
	if l.Indent == "" {
		return "    "
	}

	return l.Indent
}

func (l Loco) ScratchDirOrDefault() string {
	if strings.TrimSpace(l.ScratchDir) == "" {
		return filepath.Join(os.TempDir(), "ink_archive")
	}

	return filepath.Clean(l.ScratchDir)
}

func (l Loco) ValueFoldersOrDefault() []string {
	if len(l.ValueFolders) == 0 {
		return []string{"values", "values-de", "values-es", "values-fr", "values-it"}
	}

	return l.ValueFolders
}

// IgnoredIDsOrDefault returns the string ids a full sync never touches. An explicit empty list
// protects nothing.
func (l Loco) IgnoredIDsOrDefault() []string {
	if l.IgnoredIDs == nil {
		return []string{
			"appName",
			"notification_channel_id_draft_service",
			"notification_channel_id_general",
			"notification_channel_id_sync_messages_service",
			"matomo",
			"sentry",
			"notifications_upload_channel_id",
		}
	}

	return l.IgnoredIDs
}

type Validation struct {
	ForbiddenSequences []string `yaml:"forbiddenSequences"`
	Exceptions         []string `yaml:"exceptions"`
}

func (v Validation) ForbiddenSequencesOrDefault() []string {
	if v.ForbiddenSequences == nil {
		return []string{"..."}
	}

	return v.ForbiddenSequences
}

// MissingSetting builds the error returned for a required but empty setting.
func MissingSetting(root, section, key string) error {
	return fmt.Errorf("%w: %s > %s > %s", ErrMissingSetting, root, section, key)
}

func Load(path string) (*Config, error) {
	s, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if s.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a regular file", path)
	}

	return buildConfig(path)
}

func buildConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("config unmarshal failed with: %w", err)
	}
	config.path = path

	for name, p := range config.Projects {
		if strings.TrimSpace(p.ProjectRoot) == "" {
			return nil, MissingSetting(name, "global", "projectRoot")
		}
	}

	return config, nil
}

// ProjectNames returns all configured project names in alphabetical order.
func (c *Config) ProjectNames() []string {
	names := make([]string, 0, len(c.Projects))
	for name := range c.Projects {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

func (c *Config) Project(name string) (Project, error) {
	p, ok := c.Projects[name]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrUnknownProject, name)
	}

	return p, nil
}

// CurrentProject returns the selected project. A selection stored with SelectProject wins over
// defaultProject. Without both, a single configured project is selected implicitly.
func (c *Config) CurrentProject() (string, error) {
	if c.path != "" {
		data, err := os.ReadFile(c.selectionPath())
		if err == nil {
			if name := strings.TrimSpace(string(data)); name != "" {
				if _, ok := c.Projects[name]; ok {
					return name, nil
				}
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("can't read project selection: %w", err)
		}
	}

	if c.DefaultProject != "" {
		if _, ok := c.Projects[c.DefaultProject]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownProject, c.DefaultProject)
		}

		return c.DefaultProject, nil
	}

	if len(c.Projects) == 1 {
		return c.ProjectNames()[0], nil
	}

	return "", fmt.Errorf("%w: no project selected", ErrMissingSetting)
}

// SelectProject persists name as the current project next to the loaded config file.
func (c *Config) SelectProject(name string) error {
	if _, ok := c.Projects[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, name)
	}
	if c.path == "" {
		return fmt.Errorf("can't store project selection without a config file")
	}

	if err := os.WriteFile(c.selectionPath(), []byte(name+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to store project selection %w", err)
	}

	return nil
}

func (c *Config) selectionPath() string {
	return filepath.Join(filepath.Dir(c.path), currentProjectFile)
}
