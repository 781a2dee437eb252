// Package commentservice owns discussion threads under feedback posts.
// Comments are edited and removed only by the signed-in user who wrote them.
package commentservice
