package bot

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// authenticator implements services.Authenticator over a mautrix client.
type authenticator struct {
	client      *mautrix.Client
	displayName string
}

// Login performs a password login. StoreCredentials makes the client adopt
// the returned token and device ID for the rest of the process lifetime.
func (a authenticator) Login(ctx context.Context, userID, password string) (string, string, error) {
	resp, err := a.client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: userID,
		},
		Password:                 password,
		InitialDeviceDisplayName: a.displayName,
		StoreCredentials:         true,
	})
	if err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.DeviceID.String(), nil
}

// Resume adopts stored credentials without a password login, then verifies
// them with a whoami round trip so a revoked token fails at startup instead
// of on the first reply.
func (a authenticator) Resume(ctx context.Context, userID, accessToken, deviceID string) error {
	a.client.UserID = id.UserID(userID)
	a.client.AccessToken = accessToken
	a.client.DeviceID = id.DeviceID(deviceID)

	_, err := a.client.Whoami(ctx)
	return err
}
