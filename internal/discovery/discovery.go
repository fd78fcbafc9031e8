package discovery

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/gzhole/skillhook/internal/rules"
)

const (
	ClaudeDir    = ".claude"
	RuleFileName = "skill-rules.json"
)

var (
	// RuleFile is the rule file location relative to a skills owner: the
	// home or project .claude directory, or a plugin directory.
	RuleFile = filepath.Join("skills", RuleFileName)

	marketplacesDir   = filepath.Join(ClaudeDir, "plugins", "marketplaces")
	projectPluginsDir = filepath.Join(ClaudeDir, "plugins")
)

// Roots are the root locations discovery starts from. An empty Home skips
// the global tiers; an empty ProjectDir skips the project tiers.
type Roots struct {
	Home       string
	ProjectDir string
	PluginRoot string
}

// Discoverer finds rule files across the four tiers.
type Discoverer struct {
	fs    afero.Fs
	roots Roots
}

func New(fs afero.Fs, roots Roots) *Discoverer {
	return &Discoverer{fs: fs, roots: roots}
}

// Discover returns every rule source that exists. Unreadable directories
// contribute nothing. The order of the result is not significant.
func (d *Discoverer) Discover() []rules.Source {
	var sources []rules.Source

	if d.roots.Home != "" {
		sources = d.appendIfExists(sources, filepath.Join(d.roots.Home, ClaudeDir, RuleFile), rules.TierGlobal)

		for _, marketplace := range d.subdirs(filepath.Join(d.roots.Home, marketplacesDir)) {
			for _, plugin := range d.subdirs(marketplace) {
				sources = d.appendIfExists(sources, filepath.Join(plugin, RuleFile), rules.TierGlobalPlugin)
			}
		}
	}

	if d.roots.ProjectDir != "" {
		for _, plugin := range d.subdirs(filepath.Join(d.roots.ProjectDir, projectPluginsDir)) {
			sources = d.appendIfExists(sources, filepath.Join(plugin, RuleFile), rules.TierProjectPlugin)
		}

		sources = d.appendIfExists(sources, filepath.Join(d.roots.ProjectDir, ClaudeDir, RuleFile), rules.TierProject)
	}

	slog.Debug("discovered rule sources",
		slog.Int("count", len(sources)),
		slog.String("home", d.roots.Home),
		slog.String("project_dir", d.roots.ProjectDir),
		slog.String("plugin_root", d.roots.PluginRoot),
	)

	return sources
}

func (d *Discoverer) appendIfExists(sources []rules.Source, path string, tier rules.Tier) []rules.Source {
	if !d.isFile(path) {
		return sources
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return append(sources, rules.Source{Path: abs, Tier: tier})
}

func (d *Discoverer) isFile(path string) bool {
	info, err := d.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// subdirs lists the directories directly under dir in lexical order.
// Entries are stat'ed individually so symlinked plugin directories count.
func (d *Discoverer) subdirs(dir string) []string {
	entries, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		slog.Debug("skipping directory scan",
			slog.String("dir", dir),
			slog.Any("error", err),
		)
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := d.fs.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs
}
