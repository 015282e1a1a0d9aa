package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

const fcmTimeout = 10 * time.Second

// FCMGateway delivers push notifications over the FCM HTTP API. One call is
// one at-most-once delivery attempt; the transport's own timeout governs.
type FCMGateway struct {
	client    *http.Client
	endpoint  string
	serverKey string
}

func NewFCMGateway(endpoint, serverKey string) *FCMGateway {
	return &FCMGateway{
		client:    &http.Client{Timeout: fcmTimeout},
		endpoint:  endpoint,
		serverKey: serverKey,
	}
}

type fcmRequest struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func (g *FCMGateway) Send(ctx context.Context, token, title, body string) domain.SendResult {
	payload, err := json.Marshal(fcmRequest{
		To: token,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return domain.SendTransientFailure
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.SendTransientFailure
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+g.serverKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.SendTransientFailure
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SendTransientFailure
	}

	var result fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.SendTransientFailure
	}

	if result.Failure == 0 {
		return domain.SendSuccess
	}
	if len(result.Results) > 0 && isPermanentError(result.Results[0].Error) {
		return domain.SendPermanentFailure
	}
	return domain.SendTransientFailure
}

// isPermanentError matches the provider conditions that mean the token will
// never work again.
func isPermanentError(code string) bool {
	switch code {
	case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
		return true
	default:
		return false
	}
}
