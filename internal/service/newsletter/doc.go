// Package newsletter implements the newsletter lifecycle and its fan-out.
//
// A newsletter is drafted, optionally scheduled, then sent once. Content and
// subject are Liquid templates rendered per recipient with first_name,
// last_name, email and unsubscribe_url. A real send holds a distributed
// lock for the newsletter so the API, the remote function and the
// scheduler never deliver the same issue twice. Test sends go to one
// address and leave the newsletter untouched.
package newsletter
