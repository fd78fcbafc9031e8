package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gzhole/skillhook/internal/config"
	"github.com/gzhole/skillhook/internal/discovery"
	"github.com/gzhole/skillhook/internal/engine"
	"github.com/gzhole/skillhook/internal/logger"
	"github.com/gzhole/skillhook/internal/matcher"
)

const (
	cmdName = "skillhook"
	cmdDesc = `Skillhook - prompt-time skill activation for AI coding agents`
)

// RootArgs holds state shared by every subcommand.
type RootArgs struct {
	ConfigFile string

	viper  *viper.Viper
	fs     afero.Fs
	Config *config.Config
}

func NewRootArgs() *RootArgs {
	return &RootArgs{
		viper: viper.New(),
		fs:    afero.NewOsFs(),
	}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&ra.ConfigFile, "config", "", "Path to config file (default: ~/.skillhook/config.yaml)")
	flags.String("home", "", "Home directory holding global rules (default: $HOME)")
	flags.String("project-dir", "", "Project directory holding project rules (default: $CLAUDE_PROJECT_DIR or cwd)")
	flags.String("plugin-root", "", "Plugin root hint (default: $CLAUDE_PLUGIN_ROOT)")
	flags.String("audit-log", "", "Append activations to this JSONL file (disabled when empty)")
	flags.Duration("regex-timeout", config.DefaultRegexTimeout, "Timeout for a single intent pattern match")
	flags.String("log-level", config.DefaultLogLevel, fmt.Sprintf("Log level, one of: %s", config.LogLevels))
	flags.String("log-format", config.DefaultLogFormat, fmt.Sprintf("Log format, one of: %s", config.LogFormats))

	for key, flag := range map[string]string{
		config.KeyHome:         "home",
		config.KeyProjectDir:   "project-dir",
		config.KeyPluginRoot:   "plugin-root",
		config.KeyAuditLog:     "audit-log",
		config.KeyRegexTimeout: "regex-timeout",
		config.KeyLogLevel:     "log-level",
		config.KeyLogFormat:    "log-format",
	} {
		if err := ra.viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	err := cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(config.LogFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(config.LogLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

// setup loads configuration and installs the default logger. Logs always
// go to stderr; stdout is reserved for the hook response.
func (ra *RootArgs) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(ra.viper, ra.ConfigFile)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	ra.Config = cfg

	slog.SetDefault(slog.New(logger.NewHandler(cmd.ErrOrStderr(), cfg.Level, cfg.LogFormat)))

	slog.Debug("configuration loaded",
		slog.String("config_file", cfg.ConfigFile),
		slog.String("home", cfg.Home),
		slog.String("project_dir", cfg.ProjectDir),
		slog.String("plugin_root", cfg.PluginRoot),
	)

	return nil
}

func (ra *RootArgs) roots() discovery.Roots {
	return discovery.Roots{
		Home:       ra.Config.Home,
		ProjectDir: ra.Config.ProjectDir,
		PluginRoot: ra.Config.PluginRoot,
	}
}

func (ra *RootArgs) newEngine() *engine.Engine {
	return engine.New(ra.fs, ra.roots(), matcher.WithRegexTimeout(ra.Config.RegexTimeout))
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(NewRootArgs())
}

func newRootCmd(args *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   cmdName,
		Short: cmdDesc,
		Long: `Skillhook runs as a UserPromptSubmit hook. It discovers skill-rules.json
files across the global, global-plugin, project-plugin and project tiers,
merges them by priority, and matches each rule's keywords and intent
patterns against the submitted prompt. Matching skills are returned to the
host as additional context; critical blocking skills stop the prompt until
they are invoked.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: args.setup,
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		newHookCmd(args),
		newMatchCmd(args),
		newRulesCmd(args),
		newSourcesCmd(args),
		newLogCmd(args),
		newVersionCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
