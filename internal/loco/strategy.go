package loco

import (
	"path/filepath"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/config"
)

const resPath = "src/main/res"

type Module string

const (
	ModuleApp  Module = "app"
	ModuleCore Module = "core"
)

// UpdateStrategy binds a Loco key to the res folder the strings are written to.
type UpdateStrategy struct {
	Project string
	Module  Module
	APIKey  string
	// TargetFolder is the res directory holding the value folders.
	TargetFolder string
	// RepoDir is the directory git commands run in.
	RepoDir string
}

func (s UpdateStrategy) Name() string {
	if s.Module == ModuleApp {
		return s.Project
	}

	return s.Project + "/" + string(s.Module)
}

// AppStrategy updates the strings of the project itself. The key is only required when
// strings are downloaded.
func AppStrategy(name string, p config.Project, requireKey bool) (UpdateStrategy, error) {
	if requireKey && strings.TrimSpace(p.LocoKey) == "" {
		return UpdateStrategy{}, config.MissingSetting(name, "loco", "locoKey")
	}

	return UpdateStrategy{
		Project:      name,
		Module:       ModuleApp,
		APIKey:       p.LocoKey,
		TargetFolder: filepath.Join(p.ProjectRoot, resPath),
		RepoDir:      p.ProjectRoot,
	}, nil
}

// CoreStrategy updates the shared Core module next to the project with the global core key.
func CoreStrategy(name string, p config.Project, g config.Global, requireKey bool) (UpdateStrategy, error) {
	if requireKey && strings.TrimSpace(g.CoreKey) == "" {
		return UpdateStrategy{}, config.MissingSetting("global", "loco", "coreKey")
	}

	return UpdateStrategy{
		Project:      name,
		Module:       ModuleCore,
		APIKey:       g.CoreKey,
		TargetFolder: filepath.Join(p.ProjectRoot, "..", "Core", resPath),
		RepoDir:      p.ProjectRoot,
	}, nil
}
