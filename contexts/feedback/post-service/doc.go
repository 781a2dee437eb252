// Package postservice owns feedback posts on a board. Anyone who can see a
// board may post to it, signed in or anonymously with a display name; only
// the board owner moves a post through its status lifecycle or removes it.
package postservice
