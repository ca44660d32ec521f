// Package types defines the bibliographic entity types, configuration, and
// standard errors shared by the Shelfmark store adapter, document resolver,
// and metadata reconciler.
package types
