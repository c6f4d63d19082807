// Package fixture provides an offline learning platform backed by a YAML
// catalog. It implements the same collaborator contracts as the HTTP gateway
// client and is used for local development, demos and end-to-end tests.
package fixture
