// Package service contains the resolution orchestrator: the use-case layer
// that turns one (species, locale) request into a cached bilingual record,
// fanning out to the detail generator and the image providers only for the
// pieces the durable cache is missing.
package service
