// Package boardservice owns feedback boards: creation under the plan limit,
// owner-only edits, and lookup by the public link shared with visitors.
package boardservice
