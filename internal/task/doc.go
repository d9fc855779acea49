// Package task provides an in-memory background task runner used for
// fire-and-forget work such as post-persistence webhook notifications.
package task
