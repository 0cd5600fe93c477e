// Package realtime authorizes pub/sub channel subscriptions. Token
// generation is delegated to the Pusher SDK; only the ownership check
// deciding who may subscribe to which channel lives here.
package realtime

import (
	"net/url"
	"strings"

	pusher "github.com/pusher/pusher-http-go"
)

// Prefix of per-user private channels; the suffix is the internal user id.
const userChannelPrefix = "private-user-"

// Authorizer signs channel subscriptions for the pub/sub provider.
type Authorizer struct {
	client pusher.Client
}

// NewAuthorizer creates an Authorizer from the provider credentials.
func NewAuthorizer(appID, appKey, secret, cluster string) *Authorizer {
	return &Authorizer{
		client: pusher.Client{
			AppID:   appID,
			Key:     appKey,
			Secret:  secret,
			Cluster: cluster,
		},
	}
}

// CanSubscribe reports whether the given user may subscribe to the
// channel. Only the user's own private channel is allowed.
func (a *Authorizer) CanSubscribe(channel, userID string) bool {
	if !strings.HasPrefix(channel, userChannelPrefix) {
		return false
	}
	return strings.TrimPrefix(channel, userChannelPrefix) == userID
}

// Authorize signs a (socket, channel) subscription and returns the
// provider's JSON auth response for the client library to relay.
func (a *Authorizer) Authorize(socketID, channel string) ([]byte, error) {
	params := url.Values{
		"socket_id":    {socketID},
		"channel_name": {channel},
	}
	return a.client.AuthenticatePrivateChannel([]byte(params.Encode()))
}

// UserChannel returns the private channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}
