// Copyright 2026 The javacomplete Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package main implements the Java code completion server and its CLI [DBG]
// prompt.
//
// javacomplete indexes the classes of a Java or Android classpath (jars, apks,
// dex files and class directories) and completes member accesses, type names,
// constructors, import and package paths and keywords at a cursor in Java
// source. It can operate as a MessagePack IPC server, as a language server, or
// as a CLI prompt for testing and debugging.
//
// # Usage
//
// Start the IPC server with the classpath from the config file:
//
//	javacomplete
//
// Index an Android platform jar and a build output directory, with debug logs:
//
//	javacomplete -cp ~/Android/Sdk/platforms/android-34/android.jar:build/classes -d
//
// Serve the Language Server Protocol on stdio:
//
//	javacomplete -lsp
//
// Run the interactive prompt:
//
//	javacomplete -c -limit 10
//
// Classpath entries may be glob patterns ("libs/**.jar") and may start with
// "~". Relative entries are resolved against the working directory.
//
// # Configuration
//
// Runtime configuration is managed through a TOML file:
//
//	[server]
//	max_limit = 64
//	min_prefix = 0
//	max_source = 1048576
//
//	[index]
//	classpath = ["~/Android/Sdk/platforms/android-34/android.jar"]
//	exclude = ["**/package-info", "**/module-info"]
//	include_android = true
//	workers = 4
//	watch = true
//	watch_debounce_ms = 300
//
//	[completion]
//	default_limit = 50
//	statement_window = 2500
//	keywords = true
//	inherit_depth = 8
//
//	[cli]
//	default_limit = 24
//	show_diff = true
//
// The config file is created with defaults if it doesn't exist. Server mode
// reloads it periodically without restart.
//
// # IPC Protocol
//
// The server reads MessagePack maps from stdin and writes one map per request
// to stdout. See package server for the message types.
//
//	{"id": "r1", "action": "complete", "t": "class A { void f() { Math.m", "c": 27}
//	{"id": "r2", "action": "accept", "t": "...", "item": "1:1:0"}
//	{"id": "r3", "action": "rebuild", "wait": true}
//
// # Index
//
// The classpath is indexed in the background at startup; completion answers
// with keywords and locals until the first index is published. With watching
// enabled, changed jars and class files are re-indexed in place.
//
// # Command Line Flags
//
//	-config string
//	    Path to the config file
//	-cp string
//	    Classpath, overrides the config file
//	-d  Enable debug mode with detailed logging
//	-c  Run in CLI mode instead of server mode
//	-lsp
//	    Serve the Language Server Protocol on stdio
//	-limit int
//	    Number of suggestions to return in CLI mode
//	-no-watch
//	    Do not watch classpath entries for changes
//	-reset-config
//	    Overwrite the default config file with defaults and exit
//	-version
//	    Show current version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/internal/cli"
	"github.com/tranleduy2000/javaide-sub031/internal/logger"
	"github.com/tranleduy2000/javaide-sub031/internal/utils"
	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/classpath"
	"github.com/tranleduy2000/javaide-sub031/pkg/config"
	"github.com/tranleduy2000/javaide-sub031/pkg/lsp"
	"github.com/tranleduy2000/javaide-sub031/pkg/server"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

const (
	Version = "0.3.0"
	AppName = "javacomplete"
	gh      = "https://github.com/tranleduy2000/javaide"
)

// sigHandler cancels the returned context on SIGINT and SIGTERM and exits
// on a second signal.
func sigHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}

// options maps the config file onto engine options.
func options(cfg *config.Config) suggest.Options {
	opts := suggest.DefaultOptions()
	opts.Classpath = classpath.Options{
		Exclude:        cfg.Index.Exclude,
		IncludeAndroid: cfg.Index.IncludeAndroid,
		Workers:        cfg.Index.Workers,
	}
	if cfg.Completion.StatementWindow > 0 {
		opts.Window = cfg.Completion.StatementWindow
	} else {
		opts.Window = classify.DefaultWindow
	}
	if cfg.Completion.InheritDepth > 0 {
		opts.InheritDepth = cfg.Completion.InheritDepth
	}
	if cfg.Completion.DefaultLimit > 0 {
		opts.DefaultLimit = cfg.Completion.DefaultLimit
	}
	opts.Keywords = cfg.Completion.Keywords
	return opts
}

// main wires config, engine and one transport together. It does not
// implement logic for them and only manages the flow.
func main() {
	ctx := sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to the config file")
	cpFlag := flag.String("cp", "", "Classpath entries separated by the OS list separator; overrides the config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	lspMode := flag.Bool("lsp", false, "Serve the Language Server Protocol on stdio")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return in CLI mode")
	noWatch := flag.Bool("no-watch", false, "Do not watch classpath entries for changes")
	resetConfig := flag.Bool("reset-config", false, "Overwrite the default config file with default values and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to reset config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		log.Infof("Wrote default config to %s", path)
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	pathResolver, err := utils.NewPathResolver("")
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	if *debugMode {
		rl := logger.New("runtime")
		for k, v := range pathResolver.GetRuntimeInfo() {
			rl.Debug(k, "value", v)
		}
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	entries := appConfig.Index.Classpath
	if *cpFlag != "" {
		entries = []string{*cpFlag}
	}
	cp := pathResolver.ResolveClasspath(entries)
	if len(cp) == 0 {
		log.Warn("Classpath is empty, only keywords and locals will be completed")
	}

	completer := suggest.NewCompleter(options(appConfig))
	defer completer.Close()

	h := completer.RebuildIndex(ctx, cp)
	go func() {
		if err := h.Wait(ctx); err != nil {
			log.Warnf("Initial index: %v", err)
			return
		}
		rep := h.Report()
		log.Debugf("Initial index: %d classes from %d entries", rep.Classes, rep.Entries)
	}()

	if appConfig.Index.Watch && !*noWatch && len(cp) > 0 {
		watcher, err := classpath.NewWatcher(appConfig.WatchDebounce(), completer.HandleFileEvent)
		if err != nil {
			log.Warnf("Classpath watching disabled: %v", err)
		} else {
			defer watcher.Close()
			if err := watcher.Watch(cp); err != nil {
				log.Warnf("Watching classpath: %v", err)
			}
		}
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		if err := h.Wait(ctx); err != nil {
			log.Warnf("Index: %v", err)
		}
		inputHandler := cli.NewInputHandler(completer, *limit, appConfig.CLI.ShowDiff)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	if *lspMode {
		log.Debug("spawning language server")
		srv := lsp.New(completer, lsp.WithLimit(appConfig.Server.MaxLimit), lsp.WithVersion(Version))
		if err := srv.RunStdio(); err != nil {
			log.Fatalf("Language server: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, appConfig, configPath)
	srv.SetClasspath(cp)
	showStartupInfo(cp)

	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func printVersion() {
	l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ javacomplete ] Java and Android code completion")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cp []string) {
	l := logger.Default(AppName)
	l.SetLevel(log.InfoLevel)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Infof("classpath: ( %s )", strings.Join(cp, string(os.PathListSeparator)))
	l.Info("status: ready")
}
