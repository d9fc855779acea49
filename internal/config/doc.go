// Package config defines the application's typed configuration and loads it
// from environment variables. Components receive the sub-config they need at
// construction time and perform no ambient environment lookups of their own.
package config
