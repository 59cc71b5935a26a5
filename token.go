package pushbridge

// PushToken identifies this device installation to the push service.
//
// Registered means the native push subsystem issued the token; Saved means
// the remote token service accepted it. Downstream consumers use the two
// flags to decide whether a sync with the remote service is still required.
type PushToken struct {
	Token      string
	Registered bool
	Saved      bool
}

// String returns the opaque token value.
func (t PushToken) String() string { return t.Token }

// Equal reports whether two tokens carry the same token value.
// The status flags do not participate in equality.
func (t PushToken) Equal(other PushToken) bool { return t.Token == other.Token }

// IsZero reports whether no token value is present.
func (t PushToken) IsZero() bool { return t.Token == "" }
