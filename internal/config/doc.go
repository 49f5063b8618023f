// Package config loads decor's settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file
//  3. DECOR_* environment variables (see EnvVars)
//
// Example file:
//
//	log:
//	  level: debug
//	  format: json
//	decorations:
//	  validation_classes:
//	    error: squiggly-error
//	    warning: squiggly-warning
//	  metrics: true
//	diagnostics:
//	  min_severity: 2
//	plugins:
//	  timeout: 2s
package config
