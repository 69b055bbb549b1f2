package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classpoll-client/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Client fetches the one-time startup snapshot and the teacher-online
// probe over plain HTTP. Several views may request the snapshot at
// once; concurrent fetches for the same tab are collapsed into one.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PollSnapshot returns the current question and, when visible, this
// client's answer. The tab correlation key is required.
func (c *Client) PollSnapshot(ctx context.Context, tabID string) (domain.Snapshot, error) {
	if tabID == "" {
		return domain.Snapshot{}, domain.ErrMissingTabID
	}

	v, err, _ := c.sf.Do("snapshot:"+tabID, func() (interface{}, error) {
		u := c.baseURL + "/pollapp/question?tabID=" + url.QueryEscape(tabID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return domain.Snapshot{}, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("fetch poll data: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return domain.Snapshot{}, fmt.Errorf("fetch poll data: %w (status %d)", domain.ErrSnapshotUnavailable, resp.StatusCode)
		}

		var snap domain.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode poll data: %w", err)
		}
		return snap, nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return v.(domain.Snapshot), nil
}

type teacherOnlineResponse struct {
	Msg             string `json:"msg"`
	IsTeacherOnline bool   `json:"isTeacherOnline"`
}

// TeacherOnline reports whether a teacher currently holds the session,
// used to gate offering the teacher role before any signup.
func (c *Client) TeacherOnline(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pollapp/teacher-online", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch teacher status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch teacher status: status %d", resp.StatusCode)
	}

	var body teacherOnlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode teacher status: %w", err)
	}
	return body.Msg == "Success" && body.IsTeacherOnline, nil
}
