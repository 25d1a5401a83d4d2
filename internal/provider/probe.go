package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ProbeResult is the outcome of probing one provider's player_api endpoint.
type ProbeResult struct {
	Provider      string
	Status        Status
	StatusCode    int
	LatencyMs     int64
	AccountStatus string    // user_info.status, e.g. "Active"
	ExpiresAt     time.Time // zero when the provider reports no expiry
	MaxConns      string
}

type Status string

const (
	StatusOK         Status = "ok"
	StatusCloudflare Status = "cloudflare"
	StatusBadStatus  Status = "bad_status"
	StatusAuthFailed Status = "auth_failed"
	StatusTimeout    Status = "timeout"
	StatusError      Status = "error"
)

// ProbePlayerAPI hits player_api.php with the account credentials and classifies the response.
// Returns StatusOK only for a 200 JSON body carrying user_info with auth != 0.
func ProbePlayerAPI(ctx context.Context, creds Credentials, client *http.Client) ProbeResult {
	res := ProbeResult{Provider: creds.Name}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	u := creds.Server + "/player_api.php?username=" + url.QueryEscape(creds.Username) + "&password=" + url.QueryEscape(creds.Secret)
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		res.Status = StatusError
		return res
	}
	resp, err := client.Do(req)
	res.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		res.Status = classifyTransportError(err)
		return res
	}
	defer resp.Body.Close()
	res.StatusCode = resp.StatusCode
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if looksLikeCloudflare(resp, body) {
		res.Status = StatusCloudflare
		return res
	}
	if resp.StatusCode != http.StatusOK {
		res.Status = StatusBadStatus
		return res
	}
	var auth struct {
		UserInfo *struct {
			Auth           interface{} `json:"auth"`
			Status         string      `json:"status"`
			ExpDate        interface{} `json:"exp_date"`
			MaxConnections interface{} `json:"max_connections"`
		} `json:"user_info"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.UserInfo == nil {
		res.Status = StatusBadStatus
		return res
	}
	if looseString(auth.UserInfo.Auth) == "0" {
		res.Status = StatusAuthFailed
		return res
	}
	res.Status = StatusOK
	res.AccountStatus = auth.UserInfo.Status
	res.MaxConns = looseString(auth.UserInfo.MaxConnections)
	if sec, err := strconv.ParseInt(looseString(auth.UserInfo.ExpDate), 10, 64); err == nil && sec > 0 {
		res.ExpiresAt = time.Unix(sec, 0).UTC()
	}
	return res
}

// looseString renders the number-or-string values player_api returns for numeric fields.
func looseString(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatInt(int64(x), 10)
	case string:
		return strings.TrimSpace(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	}
	return ""
}

func classifyTransportError(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusTimeout
	}
	return StatusError
}

// looksLikeCloudflare reports a Cloudflare challenge or block page.
// Only when we're sure (Server header or classic challenge text): providers also use odd
// status codes such as 884 for "pod busy".
func looksLikeCloudflare(resp *http.Response, body []byte) bool {
	if resp.StatusCode == http.StatusOK {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(resp.Header.Get("Server")), "cloudflare") {
		return true
	}
	preview := body
	if len(preview) > 512 {
		preview = preview[:512]
	}
	p := strings.ToLower(string(preview))
	challenge := strings.Contains(p, "checking your browser") ||
		strings.Contains(p, "cf-bypass") ||
		strings.Contains(p, "ray id")
	switch resp.StatusCode {
	case 403, 503, 520, 521, 524:
		return challenge
	}
	return false
}
