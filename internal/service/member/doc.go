// Package member manages the membership directory: member records, their
// payments and renewals.
//
// A member's status (active, expiring, expired) is never stored; it is
// derived from the expiry date whenever the directory is read.
package member
