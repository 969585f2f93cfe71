// Package publication implements editorial review of publications.
//
// Publications move through draft, submitted, approved or rejected,
// published and archived; domain.CanTransition is the single source of
// truth for which moves are legal. Files live in a storage.Store, and
// drafts can be imported from an RSS or Atom feed.
package publication
