package broker

// loginPayload is the body sent to the automation service's /login.
type loginPayload struct {
	BrokerType string `json:"broker_type"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	ExePath    string `json:"exe_path,omitempty"`
}

// Each broker kind maps to its own login procedure. Adding support for
// a new automation target is a table entry here, not a branch edit.
var loginProcs = map[string]func(Credentials) loginPayload{
	// 银河: credentials live in the prepared client instance, the login
	// call carries only the client path.
	"yh": func(c Credentials) loginPayload {
		return loginPayload{BrokerType: c.Kind, ExePath: c.ExePath}
	},
	"ht":  userPassLogin,
	"yjb": userPassLogin,
	"xq":  userPassLogin,
}

func userPassLogin(c Credentials) loginPayload {
	return loginPayload{
		BrokerType: c.Kind,
		Username:   c.Username,
		Password:   c.Password,
		ExePath:    c.ExePath,
	}
}

// KindSupported reports whether the broker kind has a registered login
// procedure.
func KindSupported(kind string) bool {
	_, ok := loginProcs[kind]
	return ok
}

// KindNeedsUserPass reports whether the kind authenticates with
// username+password (as opposed to an already-authenticated client
// instance).
func KindNeedsUserPass(kind string) bool {
	return KindSupported(kind) && kind != "yh"
}
