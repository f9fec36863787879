// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はAI提案など外部APIの呼び出しに使うHTTPクライアントを作成します。
//
// timeout はリクエスト全体の上限で、0以下の場合は30秒になります。
// http.DefaultClient にはタイムアウトが無いため、外部呼び出しには常にこれを使うこと。
// 接続は単一の上流ホストに集中するので、ホスト単位のアイドル接続数を多めに確保します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
