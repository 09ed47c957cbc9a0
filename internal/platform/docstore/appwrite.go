package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AppwriteClient talks to the Appwrite Databases REST API.
type AppwriteClient struct {
	endpoint   string
	project    string
	key        string
	database   string
	httpClient *http.Client
}

// NewAppwriteClient constructs a client for the given Appwrite deployment.
func NewAppwriteClient(endpoint, project, key, database string) *AppwriteClient {
	return &AppwriteClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		key:      key,
		database: database,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type appwriteDocument map[string]any

type appwriteList struct {
	Total     int                `json:"total"`
	Documents []appwriteDocument `json:"documents"`
}

type appwriteError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Get implements Store.
func (c *AppwriteClient) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc appwriteDocument
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", c.database, collection, id)
	if err := c.do(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return Document{}, err
	}
	return fromAppwrite(collection, doc), nil
}

// List implements Store.
func (c *AppwriteClient) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", c.database, collection)
	if len(queries) > 0 {
		values := url.Values{}
		for _, q := range queries {
			encoded, err := encodeQuery(q)
			if err != nil {
				return nil, err
			}
			values.Add("queries[]", encoded)
		}
		path += "?" + values.Encode()
	}
	var list appwriteList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(list.Documents))
	for _, doc := range list.Documents {
		out = append(out, fromAppwrite(collection, doc))
	}
	return out, nil
}

// Create implements Store. An empty id requests a server-generated one.
func (c *AppwriteClient) Create(ctx context.Context, collection, id string, data Fields) (Document, error) {
	if id == "" {
		id = "unique()"
	}
	body := map[string]any{
		"documentId": id,
		"data":       data,
	}
	var doc appwriteDocument
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", c.database, collection)
	if err := c.do(ctx, http.MethodPost, path, body, &doc); err != nil {
		return Document{}, err
	}
	return fromAppwrite(collection, doc), nil
}

// Update implements Store.
func (c *AppwriteClient) Update(ctx context.Context, collection, id string, data Fields) (Document, error) {
	body := map[string]any{"data": data}
	var doc appwriteDocument
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", c.database, collection, id)
	if err := c.do(ctx, http.MethodPatch, path, body, &doc); err != nil {
		return Document{}, err
	}
	return fromAppwrite(collection, doc), nil
}

func (c *AppwriteClient) do(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("docstore/appwrite: marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("docstore/appwrite: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	req.Header.Set("X-Appwrite-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("docstore/appwrite: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		var apiErr appwriteError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrNotFound)
		case http.StatusConflict:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrConflict)
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrInvalidSchema)
		default:
			return fmt.Errorf("docstore/appwrite: status %d: %s", resp.StatusCode, apiErr.Message)
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("docstore/appwrite: decode response: %w", err)
		}
	}
	return nil
}

func encodeQuery(q Query) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"method":    string(q.Op),
		"attribute": q.Field,
		"values":    []any{q.Value},
	})
	if err != nil {
		return "", fmt.Errorf("docstore/appwrite: encode query: %w", err)
	}
	return string(payload), nil
}

// fromAppwrite strips the $-prefixed system attributes into a Document.
func fromAppwrite(collection string, doc appwriteDocument) Document {
	fields := make(Fields, len(doc))
	var id string
	for k, v := range doc {
		if k == "$id" {
			id, _ = v.(string)
			continue
		}
		if strings.HasPrefix(k, "$") {
			continue
		}
		fields[k] = v
	}
	return Document{ID: id, Collection: collection, Fields: fields}
}
