// Package notify delivers "your song is playing" notifications to
// requesters over SMS and email. Delivery is at most once per request: the
// dispatcher skips requests already flagged as notified and persists the flag
// only after at least one channel succeeds, so a request whose channels all
// failed is retried by the next match.
package notify
