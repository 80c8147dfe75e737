package bsky

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bskybots/internal/caption"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client())
	c.Host = srv.URL
	c.PublicHost = srv.URL
	return c, srv
}

func loginHandler(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "com.atproto.server.createSession") {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["identifier"] == "" || body["password"] == "" {
				t.Error("missing identifier/password in createSession body")
			}
			json.NewEncoder(w).Encode(sessionResp{
				AccessJwt: "jwt-token",
				DID:       "did:plc:abc123",
				Handle:    "tester.bsky.social",
			})
			return
		}
		next(w, r)
	}
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))

	if err := c.Login(context.Background(), "tester.bsky.social", "app-pass"); err != nil {
		t.Fatal(err)
	}
	if c.DID() != "did:plc:abc123" {
		t.Errorf("DID = %q", c.DID())
	}
	if c.Handle() != "tester.bsky.social" {
		t.Errorf("Handle = %q", c.Handle())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"AuthenticationRequired","message":"Invalid identifier or password"}`))
	})

	err := c.Login(context.Background(), "x", "y")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "AuthenticationRequired") {
		t.Errorf("expected structured xrpc error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got: %v", err)
	}
}

func TestUploadBlob(t *testing.T) {
	blobJSON := `{"$type":"blob","ref":{"$link":"bafyrei"},"mimeType":"image/png","size":8}`
	pngBytes := []byte("\x89PNG\r\n\x1a\n")

	c, _ := newTestClient(t, loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "com.atproto.repo.uploadBlob") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-token" {
			t.Errorf("Authorization = %q", got)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want image/png", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != string(pngBytes) {
			t.Error("blob body not forwarded verbatim")
		}
		w.Write([]byte(`{"blob":` + blobJSON + `}`))
	}))

	if err := c.Login(context.Background(), "u", "p"); err != nil {
		t.Fatal(err)
	}
	blob, err := c.UploadBlob(context.Background(), pngBytes)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != blobJSON {
		t.Errorf("blob ref = %s", blob)
	}
}

func TestUploadBlob_RequiresLogin(t *testing.T) {
	c := NewClient(nil)
	if _, err := c.UploadBlob(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error without session")
	}
}

func TestCreatePost_FullRecord(t *testing.T) {
	var captured createRecordReq

	c, _ := newTestClient(t, loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "com.atproto.repo.createRecord") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("bad createRecord body: %v", err)
		}
		json.NewEncoder(w).Encode(Ref{URI: "at://did:plc:abc123/app.bsky.feed.post/xyz", CID: "bafycid"})
	}))

	if err := c.Login(context.Background(), "u", "p"); err != nil {
		t.Fatal(err)
	}

	text, facets := caption.NewBuilder(300).
		Text("hello\n\n").Tag("bangla").Mention("sayed.page", "did:plc:mention").
		Build()

	ref, err := c.CreatePost(context.Background(), Post{
		Text:   text,
		Facets: facets,
		Images: []Image{{Alt: "an image", Blob: Blob(`{"$type":"blob"}`)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ref.URI == "" || ref.CID == "" {
		t.Errorf("incomplete ref: %+v", ref)
	}

	if captured.Repo != "did:plc:abc123" {
		t.Errorf("repo = %q", captured.Repo)
	}
	if captured.Collection != "app.bsky.feed.post" {
		t.Errorf("collection = %q", captured.Collection)
	}
	rec := captured.Record
	if rec["$type"] != "app.bsky.feed.post" {
		t.Errorf("record $type = %v", rec["$type"])
	}
	if rec["text"] != text {
		t.Errorf("record text = %v", rec["text"])
	}
	if rec["createdAt"] == nil {
		t.Error("record missing createdAt")
	}

	wire, _ := json.Marshal(rec["facets"])
	for _, want := range []string{
		`"$type":"app.bsky.richtext.facet#tag"`, `"tag":"bangla"`,
		`"$type":"app.bsky.richtext.facet#mention"`, `"did":"did:plc:mention"`,
		`"byteStart"`, `"byteEnd"`,
	} {
		if !strings.Contains(string(wire), want) {
			t.Errorf("facets missing %s in %s", want, wire)
		}
	}

	embed, _ := json.Marshal(rec["embed"])
	for _, want := range []string{`"$type":"app.bsky.embed.images"`, `"alt":"an image"`, `"image":{"$type":"blob"}`} {
		if !strings.Contains(string(embed), want) {
			t.Errorf("embed missing %s in %s", want, embed)
		}
	}
}

func TestCreatePost_Reply(t *testing.T) {
	var captured createRecordReq
	c, _ := newTestClient(t, loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		json.NewEncoder(w).Encode(Ref{URI: "at://x", CID: "c2"})
	}))
	c.Login(context.Background(), "u", "p")

	parent := &Ref{URI: "at://did:plc:abc123/app.bsky.feed.post/parent", CID: "bafyparent"}
	if _, err := c.CreatePost(context.Background(), Post{Text: "42% remaining", ReplyTo: parent}); err != nil {
		t.Fatal(err)
	}

	reply, _ := json.Marshal(captured.Record["reply"])
	// Root and parent both point at the referenced post.
	if n := strings.Count(string(reply), parent.URI); n != 2 {
		t.Errorf("reply ref should carry the parent URI as both root and parent, got %s", reply)
	}
}

func TestCreatePost_CapsImagesAtFour(t *testing.T) {
	var captured createRecordReq
	c, _ := newTestClient(t, loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		json.NewEncoder(w).Encode(Ref{URI: "at://x", CID: "c"})
	}))
	c.Login(context.Background(), "u", "p")

	var imgs []Image
	for i := 0; i < 6; i++ {
		imgs = append(imgs, Image{Alt: "img", Blob: Blob(`{}`)})
	}
	if _, err := c.CreatePost(context.Background(), Post{Text: "multi", Images: imgs}); err != nil {
		t.Fatal(err)
	}

	embed := captured.Record["embed"].(map[string]any)
	images := embed["images"].([]any)
	if len(images) != 4 {
		t.Errorf("embedded %d images, want 4", len(images))
	}
}

func TestGetProfile(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "app.bsky.actor.getProfile") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("actor"); got != "sayed.page" {
			t.Errorf("actor = %q", got)
		}
		w.Write([]byte(`{"handle":"sayed.page","displayName":"Sayed","avatar":"https://cdn/avatar.jpg"}`))
	})

	p, err := c.GetProfile(context.Background(), "sayed.page")
	if err != nil {
		t.Fatal(err)
	}
	if p.Handle != "sayed.page" || p.DisplayName != "Sayed" || p.Avatar == "" {
		t.Errorf("profile = %+v", p)
	}
}

func TestDiagnoseHTTPError_Fallback(t *testing.T) {
	err := diagnoseHTTPError(500, []byte("something unexpected"))
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "something unexpected") {
		t.Errorf("fallback error = %v", err)
	}
}
