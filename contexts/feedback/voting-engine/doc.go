// Package votingengine owns per-user votes on feedback posts and the
// denormalized vote counter stored on each post.
//
// A vote request is a toggle: casting the same type twice removes the vote,
// casting a different type switches it. The lookup, the write and the
// counter recount run together under a row lock on the post, so the counter
// always equals the number of upvote rows once a request returns.
package votingengine
