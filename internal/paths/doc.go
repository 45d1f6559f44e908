// Package paths resolves skillctx's configuration and corpus locations.
//
// User-level locations follow the XDG Base Directory conventions through
// github.com/adrg/xdg:
//
//	ConfigDir()  $XDG_CONFIG_HOME/skillctx
//	DataDir()    $XDG_DATA_HOME/skillctx
//
// [DefaultCorpusDirs] lists the directories searched for skill files when
// the configuration names none, project-local first.
package paths
