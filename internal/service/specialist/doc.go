// Package specialist manages the public specialist directory.
package specialist
