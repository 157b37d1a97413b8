// Package mock provides test doubles for the ai interfaces.
// All defaults are deterministic so tests never depend on external services.
package mock
