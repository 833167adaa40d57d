package dispatcher

import (
	"encoding/json"

	"github.com/dmitrymomot/motdlink/core/page"
)

// Protocol actions recognized on the wire.
const (
	actionSetIdentity = "set-identity"
	actionSwitch      = "switch"
	actionCustomData  = "custom-data"
)

// Status is the closed enumeration of response codes.
type Status string

const (
	StatusOK                   Status = "OK"
	StatusUnknownIdentity      Status = "ERROR_UNKNOWN_IDENTITY"
	StatusSessionClosed        Status = "ERROR_SESSION_CLOSED"
	StatusLiveNotPermitted     Status = "ERROR_LIVE_NOT_PERMITTED"
	StatusSecretRejected       Status = "ERROR_SECRET_REJECTED"
	StatusUnknownPage          Status = "ERROR_UNKNOWN_PAGE"
	StatusSwitchRefused        Status = "ERROR_SWITCH_REFUSED"
	StatusSwitchCallbackFailed Status = "ERROR_SWITCH_CALLBACK_FAILED"
	StatusPageCallbackFailed   Status = "ERROR_PAGE_CALLBACK_FAILED"
	StatusInvalidResponse      Status = "ERROR_INVALID_RESPONSE"
	StatusLiveStopped          Status = "ERROR_LIVE_STOPPED"
)

// message is the inbound protocol envelope. Routing fields only; custom
// data stays raw until the action handler needs it.
type message struct {
	Action    string          `json:"action"`
	Identity  string          `json:"identity"`
	SessionID uint64          `json:"session_id"`
	NewSecret *string         `json:"new_secret"`
	Live      bool            `json:"live"`
	NewPageID string          `json:"new_page_id"`
	Data      json.RawMessage `json:"custom_data"`
}

type statusEnvelope struct {
	Status Status `json:"status"`
}

// dataEnvelope always carries custom_data, even when empty, so clients can
// rely on the field's presence in OK data replies.
type dataEnvelope struct {
	Status Status       `json:"status"`
	Data   page.Payload `json:"custom_data"`
}

// decodePayload parses the opaque custom data. A missing field is a
// protocol violation; a JSON null is an empty payload.
func decodePayload(raw json.RawMessage) (page.Payload, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var data page.Payload
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return data, true
}
