// Package uploader publishes the exported timetable file to a GitHub
// repository via the contents API, so a static URL can be subscribed to.
package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

type uploadRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// UploadToGitHub pushes the file at filename to repo ("owner/name") under
// path, creating it or updating it in place.
func UploadToGitHub(ctx context.Context, token, repo, path, filename string) error {
	fileContent, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	contentsURL := fmt.Sprintf("https://api.github.com/repos/%s/contents/%s", repo, path)
	sha, err := existingSHA(ctx, token, contentsURL)
	if err != nil {
		return err
	}

	body := uploadRequest{
		Message: "Update timetable export",
		Content: base64.StdEncoding.EncodeToString(fileContent),
		SHA:     sha,
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, contentsURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading to GitHub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub upload failed, status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// existingSHA returns the blob SHA of the target file if it already exists,
// or "" for a new file. The contents API requires the SHA on updates.
func existingSHA(ctx context.Context, token, contentsURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentsURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("looking up existing file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("GitHub lookup failed, status %d", resp.StatusCode)
	}

	var existing struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return "", fmt.Errorf("decoding lookup response: %w", err)
	}
	return existing.SHA, nil
}
