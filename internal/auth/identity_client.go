package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradinghub/backend/internal/model"
)

const (
	// DefaultIdentitySessionURL はIdPのセッションデータ取得エンドポイント。
	DefaultIdentitySessionURL = "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"

	// sessionIDHeader はsession_idを渡すリクエストヘッダー名。
	sessionIDHeader = "X-Session-ID"

	// maxIdentityResponseSize はIdPレスポンスボディの上限（1MB）。
	maxIdentityResponseSize = 1 << 20
)

// IdentityProvider は外部IdPとのsession_id交換のインターフェース。
// 失敗時は理由を区別せず (nil, false) を返す。
type IdentityProvider interface {
	FetchSessionData(ctx context.Context, sessionID string) (*model.SessionData, bool)
}

// IdentityClientConfig はIdPクライアントの設定。
type IdentityClientConfig struct {
	Endpoint   string
	HTTPClient *http.Client // nilの場合はTimeout付きのデフォルトクライアント
	Timeout    time.Duration
}

// IdentityClient はHTTP経由でIdPからセッションデータを取得する。
// リトライとキャッシュは行わない。
type IdentityClient struct {
	endpoint string
	client   *http.Client
}

// NewIdentityClient はIdentityClientを生成する。
func NewIdentityClient(config IdentityClientConfig) *IdentityClient {
	if config.Endpoint == "" {
		config.Endpoint = DefaultIdentitySessionURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &IdentityClient{endpoint: config.Endpoint, client: client}
}

// FetchSessionData はsession_idをIdPに送り、本人確認済みの属性を取得する。
// 通信エラー、非200応答、不正なJSON、必須フィールド欠落はすべて (nil, false) になる。
func (c *IdentityClient) FetchSessionData(ctx context.Context, sessionID string) (*model.SessionData, bool) {
	if sessionID == "" {
		return nil, false
	}

	data, err := c.fetch(ctx, sessionID)
	if err != nil {
		slog.Warn("identity provider exchange failed",
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return data, true
}

func (c *IdentityClient) fetch(ctx context.Context, sessionID string) (*model.SessionData, error) {
	// 呼び出し元のキャンセルは伝播させず、クライアントのタイムアウトのみで打ち切る
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session data request: %w", err)
	}
	req.Header.Set(sessionIDHeader, sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read session data response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session data request returned status %d", resp.StatusCode)
	}

	var data model.SessionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session data response: %w", err)
	}

	switch {
	case data.ID == "":
		return nil, fmt.Errorf("empty id in session data response")
	case data.Email == "":
		return nil, fmt.Errorf("empty email in session data response")
	case data.Name == "":
		return nil, fmt.Errorf("empty name in session data response")
	case data.SessionToken == "":
		return nil, fmt.Errorf("empty session_token in session data response")
	}

	return &data, nil
}

// compile-time interface check
var _ IdentityProvider = (*IdentityClient)(nil)
