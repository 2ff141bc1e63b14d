package repositories

// KV is the durable key-value storage the dashboard persists its session
// state to. Get reports ok=false for a missing key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Storage keys.
const (
	KeyAccounts    = "dashboardUsers"
	KeyCurrentUser = "currentUser"
	KeyAuthToken   = "authToken"
	KeyUser        = "user"
)
