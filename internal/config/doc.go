// Package config loads skillctx configuration with Viper.
//
// The configuration file is config.yaml, searched in the current directory
// and then in $XDG_CONFIG_HOME/skillctx. Every key can be overridden with a
// SKILLCTX_ environment variable, nested keys joined by underscores
// (SKILLCTX_WEIGHTS_GLOB, SKILLCTX_CACHE_ENABLED).
//
//	version: 1
//	corpus_dirs:
//	  - ~/agent-skills
//	  - .skillctx
//	budget: 8000
//	chars_per_token: 4
//	weights:
//	  glob: 0.7
//	  keyword: 0.3
//	cache:
//	  enabled: true
//	  max_entries: 0
//
// Call [Init] once at startup, then [Load].
package config
