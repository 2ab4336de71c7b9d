package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/konstantinfoerster/loco-importer-go/internal/config"
	"github.com/konstantinfoerster/loco-importer-go/internal/git"
	logger "github.com/konstantinfoerster/loco-importer-go/internal/log"
	"github.com/konstantinfoerster/loco-importer-go/internal/loco"
	"github.com/konstantinfoerster/loco-importer-go/internal/storage"
	"github.com/konstantinfoerster/loco-importer-go/internal/timer"
	"github.com/konstantinfoerster/loco-importer-go/internal/updater"
	"github.com/konstantinfoerster/loco-importer-go/internal/validation"
	"github.com/konstantinfoerster/loco-importer-go/internal/web"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "loco-importer",
		Short: "Import Android strings from Loco into a project",
		Long: `loco-importer downloads the Android string resources of a project from Loco,
merges them into the local values folders and validates the result.

Commands:
  app       Import and validate the strings of the current project
  core      Import and validate the strings of the shared Core module
  project   List or select the current project
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "./configs/settings.yaml", "path to the configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides the configuration file")

	root.AddCommand(
		a.newImportCmd(loco.ModuleApp, "Import and validate the strings of the current project"),
		a.newImportCmd(loco.ModuleCore, "Import and validate the strings of the shared Core module"),
		a.newProjectCmd(),
		newVersionCmd(out),
	)

	return root
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level := a.logLevel
	if level == "" {
		level = cfg.Logging.LevelOrDefault()
	}
	if err := logger.SetLogLevel(level); err != nil {
		return err
	}

	log.Debug().Msgf("OS\t\t %s", runtime.GOOS)
	log.Debug().Msgf("ARCH\t\t %s", runtime.GOARCH)
	log.Debug().Str("config", a.configPath).Msg("configuration loaded")
	a.cfg = cfg

	return nil
}

type importFlags struct {
	check   bool
	verbose bool
	tag     string
}

func (a *app) newImportCmd(module loco.Module, short string) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   string(module) + " [string ids...]",
		Short: short,
		Long: short + `.

Without string ids all strings are replaced by the remote ones, except the ignored ids.
With string ids only those strings are synchronized, a string missing remotely is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, module, args, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.check, "check", "c", false, "only validate the local strings")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print how to fix validation errors")
	cmd.Flags().StringVarP(&flags.tag, "tag", "t", "", "only import strings of this feature tag")

	return cmd
}

func (a *app) runImport(cmd *cobra.Command, module loco.Module, ids []string, flags importFlags) error {
	defer timer.TimeTrack(time.Now(), "loco "+string(module))

	name, err := a.cfg.CurrentProject()
	if err != nil {
		return err
	}
	project, err := a.cfg.Project(name)
	if err != nil {
		return err
	}

	var strategy loco.UpdateStrategy
	if module == loco.ModuleCore {
		strategy, err = loco.CoreStrategy(name, project, a.cfg.Global, !flags.check)
	} else {
		strategy, err = loco.AppStrategy(name, project, !flags.check)
	}
	if err != nil {
		return err
	}

	lc := a.cfg.Loco
	var fetcher updater.Fetcher
	if !flags.check {
		store, err := storage.NewLocalStorage(storage.Config{Location: lc.ScratchDirOrDefault(), Mode: storage.REPLACE})
		if err != nil {
			return err
		}
		client := loco.NewClient(lc.BaseURLOrDefault(), web.NewClient(lc.Client, nil))
		fetcher = loco.NewFetcher(client, store, lc.BaseTagOrDefault(), lc.ValueFoldersOrDefault(), lc.IndentOrDefault())
	}

	settings := updater.Settings{
		ValueFolders: lc.ValueFoldersOrDefault(),
		IgnoredIDs:   lc.IgnoredIDsOrDefault(),
		Indent:       lc.IndentOrDefault(),
		Color:        isTerminal(os.Stdout),
	}
	validator := validation.FromConfig(lc.Validation, a.out)
	u := updater.New(settings, fetcher, git.NewRepo(strategy.RepoDir), validator, a.out)

	tag := flags.tag
	if tag == "" {
		tag = project.Tag
	}

	log.Info().Str("project", strategy.Name()).Strs("ids", ids).Str("tag", tag).Msg("starting")
	_, err = u.Run(cmd.Context(), strategy, updater.Options{
		TargetIDs:  ids,
		FeatureTag: tag,
		CheckOnly:  flags.check,
		Verbose:    flags.verbose,
	})

	return err
}

func (a *app) newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project [name]",
		Short: "List the configured projects or select the current one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.cfg.SelectProject(args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Selected project %s\n", args[0])

				return nil
			}

			current, _ := a.cfg.CurrentProject()
			for _, name := range a.cfg.ProjectNames() {
				marker := " "
				if name == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(a.out, "%s %s\n", marker, name)
			}

			return nil
		},
	}
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(out, "loco-importer version %s\n", version)
			_, _ = fmt.Fprintf(out, "  commit:    %s\n", commit)
		},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
