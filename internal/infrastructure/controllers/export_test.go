package controllers

import "github.com/rios0rios0/manifestpush/internal/domain/entities"

// SetLookup replaces the environment lookup for testing.
func SetLookup(it *PublishController, lookup entities.LookupFunc) {
	it.lookup = lookup
}
