package cloud

import (
	"context"
	"io"
	"net/http"
	"time"
)

var smokeClient = &http.Client{Timeout: 10 * time.Second}

// HTTPGet issues a GET against url and returns the response status code.
// Used for the post-deploy smoke check only.
func (c *CLI) HTTPGet(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := smokeClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}
