// Package application implements the review workflow for membership and
// specialist applications.
//
// Approval is atomic: the status change and the directory insert commit
// together or not at all, and only a pending application can be approved
// or rejected. Repository implementations live in repository/postgres/ and
// repository/memory/.
package application
