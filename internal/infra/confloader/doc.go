// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Flags (passed as a dotted-key map)
//  2. Environment variables (WIZCLI_ prefix, "__" between sections)
//  3. YAML configuration file
//  4. Defaults
//
// Watcher reports writes to a configuration file so long-running
// sessions can pick up changes without restarting.
package confloader
