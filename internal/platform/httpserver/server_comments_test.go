package httpserver

import (
	"net/http"
	"strings"
	"testing"
)

func TestCommentDeleteByNonAuthorIsForbidden(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/comments/comment-1", "", ""), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/comments/comment-1", env.token(t, "user-3"), ""), http.StatusForbidden)

	rr := env.do(t, http.MethodGet, "/v1/posts/post-1/comments", "", "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "Yes please") {
		t.Fatalf("comment must be unchanged: %s", rr.Body.String())
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/v1/comments/comment-1", env.token(t, "user-2"), ""), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/comments/comment-1", env.token(t, "user-2"), ""), http.StatusNotFound)
}

func TestCommentCreateAndEdit(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-1/comments", "", `{"content":"anon"}`), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-1/comments", "", `{"content":"anon","author_name":"Visitor"}`), http.StatusCreated)

	long := strings.Repeat("x", 501)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-1/comments", env.token(t, "user-1"), `{"content":"`+long+`"}`), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodPatch, "/v1/comments/comment-1", env.token(t, "user-1"), `{"content":"edited"}`), http.StatusForbidden)
	rr := env.do(t, http.MethodPatch, "/v1/comments/comment-1", env.token(t, "user-2"), `{"content":"edited"}`)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"content":"edited"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestPrivateBoardCommentsReadAsMissing(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/posts/post-private/comments", "", ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/posts/post-private/comments", env.token(t, "user-3"), ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-private/comments", "", `{"content":"hi","author_name":"Visitor"}`), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-private/comments", env.token(t, "user-3"), `{"content":"hi"}`), http.StatusNotFound)

	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-private/comments", env.token(t, "owner-1"), `{"content":"owner note"}`), http.StatusCreated)
	rr := env.do(t, http.MethodGet, "/v1/posts/post-private/comments", env.token(t, "owner-1"), "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"author_id":"owner-1"`) {
		t.Fatalf("owner comment must carry author_id: %s", rr.Body.String())
	}
}
