// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, flags, maps
//   - Watch Support: change notification for config files (fsnotify)
//   - Type Safety: Unmarshaling into typed structs
//   - Defaults: fields already set in the target struct are kept
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables (ECIGATE_ prefix, "__" between levels)
//  3. Configuration files
//  4. Default values
package confloader
