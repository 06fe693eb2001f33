// Package datasets registers the interchange datasets with the core registry.
// Import this package for its side effects to make them available.
package datasets
