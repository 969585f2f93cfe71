// Package domain holds the records the admin backend works with:
// membership and specialist applications, the member and specialist
// directories, payments, newsletters, subscribers and publications.
//
// Everything here is plain data plus small pure helpers such as status
// derivation and lifecycle tables. Persistence and transport live in
// other packages, so nothing in domain imports them.
package domain
