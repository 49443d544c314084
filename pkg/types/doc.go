// Package types defines the record types served by campus, the Store and
// Repository interfaces every backend implements, backend configuration,
// and the standard storage errors.
package types
