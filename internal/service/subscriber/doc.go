// Package subscriber manages the newsletter audience. Subscribing is
// idempotent: an existing address is reactivated rather than duplicated.
// Every subscriber carries an unguessable token used by one-click
// unsubscribe links.
package subscriber
