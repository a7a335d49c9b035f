package model

import (
	"encoding/json"
	"time"
)

// データロガーから届く1件分
type UserDataRecord struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	IP        string          `json:"ip"`
	UserAgent string          `json:"userAgent"`
}

const UserDataTypeRegistration = "registration"
