package cache

import (
	"encoding/json"
	"fmt"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

// encodeIdentity validates and serialises an identity. Invalid input yields
// a malformed-local-state error.
func encodeIdentity(identity *session.Identity) ([]byte, error) {
	if identity == nil {
		return nil, errors.NewMalformedLocalStateError("identity is nil", nil)
	}
	normalized := *identity
	normalized.LoginTime = biztime.Normalize(identity.LoginTime)
	normalized.DeviceInfo.CapturedAt = biztime.Normalize(identity.DeviceInfo.CapturedAt)

	if err := utils.ValidateStruct(&normalized); err != nil {
		return nil, errors.NewMalformedLocalStateError("identity failed validation", err)
	}
	data, err := json.Marshal(&normalized)
	if err != nil {
		return nil, errors.NewMalformedLocalStateError("identity is not serialisable", err)
	}
	return data, nil
}

func decodeIdentity(data []byte) (*session.Identity, error) {
	var identity session.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, errors.NewMalformedLocalStateError("identity is not valid JSON", err)
	}
	if err := utils.ValidateStruct(&identity); err != nil {
		return nil, errors.NewMalformedLocalStateError(fmt.Sprintf("identity failed validation: %v", err), err)
	}
	if identity.Employee.Permissions == nil {
		identity.Employee.Permissions = []string{}
	}
	return &identity, nil
}
