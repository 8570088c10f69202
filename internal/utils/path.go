package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// PathResolver resolves classpath entries given on the command line or in
// the config file.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
	baseDir        string
}

// NewPathResolver creates a resolver for entries relative to baseDir. An
// empty baseDir means the working directory.
func NewPathResolver(baseDir string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			baseDir = filepath.Dir(execPath)
		}
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      getConfigDir(homeDir),
		baseDir:        baseDir,
	}
	log.Debugf("PathResolver initialized: exec=%s, base=%s, configDir=%s",
		execPath, baseDir, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "javacomplete")
		}
		return filepath.Join(homeDir, ".config", "javacomplete")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "javacomplete")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "javacomplete")
	default:
		return filepath.Join(homeDir, ".config", "javacomplete")
	}
}

// ResolveClasspath expands entries into existing paths. Entries may be
// separated by the OS path list separator, start with ~, be relative to the
// base directory, or be doublestar globs ("libs/**/*.jar"). Missing entries
// are logged and dropped; duplicates keep their first position.
func (pr *PathResolver) ResolveClasspath(entries []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, entry := range entries {
		for _, part := range filepath.SplitList(entry) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			p := pr.ResolveRelativePath(pr.expandHome(part))
			if strings.ContainsAny(part, "*?[{") {
				matches, err := doublestar.FilepathGlob(p)
				if err != nil {
					log.Warnf("Bad classpath pattern %s: %v", part, err)
					continue
				}
				if len(matches) == 0 {
					log.Warnf("Classpath pattern %s matched nothing", part)
				}
				sort.Strings(matches)
				for _, m := range matches {
					add(m)
				}
				continue
			}
			if _, err := os.Stat(p); err != nil {
				log.Warnf("Skipping classpath entry %s: %v", part, err)
				continue
			}
			add(p)
		}
	}
	return out
}

func (pr *PathResolver) expandHome(p string) string {
	if p == "~" {
		return pr.homeDir
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(pr.homeDir, p[2:])
	}
	return p
}

// ResolveRelativePath resolves a path relative to the base directory
func (pr *PathResolver) ResolveRelativePath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(pr.baseDir, relativePath)
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()

	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"base_dir":        pr.baseDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}

	envVars := []string{"HOME", "XDG_CONFIG_HOME", "APPDATA", "JAVA_HOME", "ANDROID_HOME"}
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
