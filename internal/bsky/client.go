// Package bsky is a minimal Bluesky (atproto xrpc) client covering what the
// bots need: app-password login, blob upload, posting with rich-text facets
// and image embeds, and public profile lookup.
package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bskybots/internal/caption"
	"bskybots/internal/model"
)

const (
	// DefaultHost is the PDS entry point used for authenticated calls.
	DefaultHost = "https://bsky.social"
	// DefaultPublicHost serves unauthenticated AppView lookups.
	DefaultPublicHost = "https://public.api.bsky.app"

	// MaxImagesPerPost is the platform bound on an images embed.
	MaxImagesPerPost = 4
)

// Blob is an opaque blob reference returned by uploadBlob. It is carried
// verbatim back into the images embed; the bots never look inside it.
type Blob = json.RawMessage

// Ref identifies a record, as needed to reply to it.
type Ref struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Image is one entry of an images embed.
type Image struct {
	Alt  string
	Blob Blob
}

// Post is everything that goes into one app.bsky.feed.post record.
type Post struct {
	Text    string
	Facets  []caption.Facet
	Images  []Image
	ReplyTo *Ref // both root and parent; the bots only reply to their own top-level posts
}

// Client talks to a PDS after Login. The zero value is not usable; call
// NewClient.
type Client struct {
	Host       string
	PublicHost string

	httpClient *http.Client

	accessJwt string
	did       string
	handle    string
}

// NewClient returns a client against the default hosts. httpClient may be
// nil, in which case a 30s-timeout client is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		Host:       DefaultHost,
		PublicHost: DefaultPublicHost,
		httpClient: httpClient,
	}
}

// Handle returns the handle of the logged-in session.
func (c *Client) Handle() string { return c.handle }

// DID returns the DID of the logged-in session.
func (c *Client) DID() string { return c.did }

type sessionResp struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

// Login creates a session with an identifier (handle or email) and an app
// password.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	body := map[string]string{"identifier": identifier, "password": password}
	var sess sessionResp
	if err := c.postJSON(ctx, "com.atproto.server.createSession", body, &sess); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if sess.AccessJwt == "" || sess.DID == "" {
		return fmt.Errorf("login: server returned no session token")
	}
	c.accessJwt = sess.AccessJwt
	c.did = sess.DID
	c.handle = sess.Handle
	return nil
}

type uploadResp struct {
	Blob json.RawMessage `json:"blob"`
}

// UploadBlob uploads raw image bytes and returns the blob reference to embed.
func (c *Client) UploadBlob(ctx context.Context, data []byte) (Blob, error) {
	if c.accessJwt == "" {
		return nil, fmt.Errorf("uploadBlob: not logged in")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Host+"/xrpc/com.atproto.repo.uploadBlob", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	req.Header.Set("Authorization", "Bearer "+c.accessJwt)

	var out uploadResp
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("uploadBlob: %w", err)
	}
	if len(out.Blob) == 0 {
		return nil, fmt.Errorf("uploadBlob: response missing blob ref")
	}
	return Blob(out.Blob), nil
}

type createRecordReq struct {
	Repo       string         `json:"repo"`
	Collection string         `json:"collection"`
	Record     map[string]any `json:"record"`
}

// CreatePost submits a post record and returns its reference.
func (c *Client) CreatePost(ctx context.Context, p Post) (Ref, error) {
	if c.accessJwt == "" {
		return Ref{}, fmt.Errorf("createPost: not logged in")
	}
	if len(p.Images) > MaxImagesPerPost {
		p.Images = p.Images[:MaxImagesPerPost]
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      p.Text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if facets := wireFacets(p.Facets); len(facets) > 0 {
		record["facets"] = facets
	}
	if len(p.Images) > 0 {
		images := make([]map[string]any, 0, len(p.Images))
		for _, img := range p.Images {
			images = append(images, map[string]any{
				"alt":   img.Alt,
				"image": img.Blob,
			})
		}
		record["embed"] = map[string]any{
			"$type":  "app.bsky.embed.images",
			"images": images,
		}
	}
	if p.ReplyTo != nil {
		record["reply"] = map[string]any{
			"root":   p.ReplyTo,
			"parent": p.ReplyTo,
		}
	}

	body := createRecordReq{
		Repo:       c.did,
		Collection: "app.bsky.feed.post",
		Record:     record,
	}
	var ref Ref
	if err := c.postJSON(ctx, "com.atproto.repo.createRecord", body, &ref); err != nil {
		return Ref{}, fmt.Errorf("createPost: %w", err)
	}
	return ref, nil
}

// GetProfile looks up an actor's public profile. No session is required.
func (c *Client) GetProfile(ctx context.Context, actor string) (model.Profile, error) {
	u := c.PublicHost + "/xrpc/app.bsky.actor.getProfile?actor=" + url.QueryEscape(actor)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Profile{}, err
	}
	var p model.Profile
	if err := c.do(req, &p); err != nil {
		return model.Profile{}, fmt.Errorf("getProfile %s: %w", actor, err)
	}
	return p, nil
}

// wireFacets converts caption facets into app.bsky.richtext.facet records.
func wireFacets(facets []caption.Facet) []map[string]any {
	out := make([]map[string]any, 0, len(facets))
	for _, f := range facets {
		var feature map[string]any
		switch {
		case f.Tag != "":
			feature = map[string]any{"$type": "app.bsky.richtext.facet#tag", "tag": f.Tag}
		case f.DID != "":
			feature = map[string]any{"$type": "app.bsky.richtext.facet#mention", "did": f.DID}
		default:
			continue
		}
		out = append(out, map[string]any{
			"index": map[string]int{
				"byteStart": f.ByteStart,
				"byteEnd":   f.ByteEnd,
			},
			"features": []map[string]any{feature},
		})
	}
	return out
}

func (c *Client) postJSON(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Host+"/xrpc/"+method, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}
	return c.do(req, out)
}

type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return diagnoseHTTPError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// diagnoseHTTPError surfaces the structured xrpc error when the body carries
// one, otherwise the raw body.
func diagnoseHTTPError(status int, body []byte) error {
	var xe xrpcError
	if err := json.Unmarshal(body, &xe); err == nil && xe.Error != "" {
		return fmt.Errorf("HTTP %d: %s: %s", status, xe.Error, xe.Message)
	}
	return fmt.Errorf("HTTP %d: %s", status, bytes.TrimSpace(body))
}
