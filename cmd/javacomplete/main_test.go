package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/config"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Index.Exclude = []string{"**/Hidden"}
	cfg.Index.IncludeAndroid = false
	cfg.Index.Workers = 2
	cfg.Completion.InheritDepth = 3
	cfg.Completion.DefaultLimit = 7
	cfg.Completion.Keywords = false

	opts := options(cfg)
	assert.Equal(t, []string{"**/Hidden"}, opts.Classpath.Exclude)
	assert.False(t, opts.Classpath.IncludeAndroid)
	assert.Equal(t, 2, opts.Classpath.Workers)
	assert.Equal(t, 3, opts.InheritDepth)
	assert.Equal(t, 7, opts.DefaultLimit)
	assert.False(t, opts.Keywords)
}

func TestOptionsZeroValuesKeepDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Completion.StatementWindow = 0
	cfg.Completion.InheritDepth = 0
	cfg.Completion.DefaultLimit = 0

	opts := options(cfg)
	def := suggest.DefaultOptions()
	assert.Equal(t, classify.DefaultWindow, opts.Window)
	assert.Equal(t, def.InheritDepth, opts.InheritDepth)
	assert.Equal(t, def.DefaultLimit, opts.DefaultLimit)
}
