package models

type SocketMessage struct {
	Action string `json:"action"`
	CoinID string `json:"coin_id"`
}

type SubscriptionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	CoinID  string `json:"coin_id,omitempty"`
}
